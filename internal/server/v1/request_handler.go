package v1

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tribehive/ai-orchestrator/internal/core/domain"
	"github.com/tribehive/ai-orchestrator/internal/core/ports"
	"github.com/tribehive/ai-orchestrator/internal/core/services"
	"github.com/tribehive/ai-orchestrator/internal/server/validator"
	"github.com/tribehive/ai-orchestrator/pkg/api"
)

type RequestHandler struct {
	engine *services.Engine
	queue  ports.Queue
	logger *zap.Logger
}

func NewRequestHandler(engine *services.Engine, queue ports.Queue, logger *zap.Logger) *RequestHandler {
	return &RequestHandler{engine: engine, queue: queue, logger: logger}
}

// Create validates and persists a request. By default the request is
// enqueued for background processing; sync callers get the terminal response
// inline.
func (h *RequestHandler) Create(c *gin.Context) {
	var body api.CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(domain.ValidationError(validator.ParseValidationError(err)))
		return
	}

	req, err := h.createOne(c, &body)
	if err != nil {
		c.Error(err)
		return
	}

	if body.Sync {
		resp, err := h.engine.Process(c.Request.Context(), req.ID)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, toResponseResponse(resp))
		return
	}

	if err := h.queue.Enqueue(req.ID, req.Priority); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusAccepted, toRequestResponse(req))
}

func (h *RequestHandler) createOne(c *gin.Context, body *api.CreateRequest) (*domain.OrchestrationRequest, error) {
	feature, err := domain.ParseFeature(body.Feature)
	if err != nil {
		return nil, err
	}

	var params *domain.GenerationParams
	if len(body.Parameters) > 0 {
		params = &domain.GenerationParams{}
		if err := json.Unmarshal(body.Parameters, params); err != nil {
			return nil, domain.BadRequestError("malformed generation parameters")
		}
	}

	return h.engine.CreateRequest(c.Request.Context(), feature, body.Input,
		body.RequesterID, body.ModelID, params, domain.ParsePriority(body.Priority))
}

// CreateBatch validates each item independently. Valid items are enqueued;
// invalid ones are reported with their index so the caller can retry them.
func (h *RequestHandler) CreateBatch(c *gin.Context) {
	var body api.BatchCreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.Error(domain.ValidationError(validator.ParseValidationError(err)))
		return
	}

	result := api.BatchCreateResponse{Accepted: []api.RequestResponse{}}
	for i := range body.Requests {
		req, err := h.createOne(c, &body.Requests[i])
		if err != nil {
			result.Rejected = append(result.Rejected, api.BatchRejection{Index: i, Error: err.Error()})
			continue
		}
		if err := h.queue.Enqueue(req.ID, req.Priority); err != nil {
			result.Rejected = append(result.Rejected, api.BatchRejection{Index: i, Error: err.Error()})
			continue
		}
		result.Accepted = append(result.Accepted, toRequestResponse(req))
	}

	status := http.StatusAccepted
	if len(result.Accepted) == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, result)
}

func (h *RequestHandler) Get(c *gin.Context) {
	req, err := h.engine.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toRequestResponse(req))
}

func (h *RequestHandler) Cancel(c *gin.Context) {
	if _, err := h.engine.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(domain.StatusCancelled)})
}

func (h *RequestHandler) GetResponse(c *gin.Context) {
	resp, err := h.engine.GetResponse(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toResponseResponse(resp))
}

func toRequestResponse(req *domain.OrchestrationRequest) api.RequestResponse {
	return api.RequestResponse{
		ID:          req.ID,
		Feature:     string(req.Feature),
		Status:      string(req.Status),
		Priority:    req.Priority.String(),
		RequesterID: req.RequesterID,
		ModelID:     req.PreferredModelID,
		Input:       req.Input,
		CreatedAt:   req.CreatedAt.Format(timeFormat),
		UpdatedAt:   req.UpdatedAt.Format(timeFormat),
	}
}

func toResponseResponse(resp *domain.OrchestrationResponse) api.ResponseResponse {
	return api.ResponseResponse{
		ID:           resp.ID,
		RequestID:    resp.RequestID,
		Feature:      string(resp.Feature),
		Status:       string(resp.Status),
		ModelID:      resp.ModelID,
		Result:       resp.Result,
		ErrorMessage: resp.ErrorMessage,
		DurationMS:   resp.DurationMS,
		CreatedAt:    resp.CreatedAt.Format(timeFormat),
	}
}

const timeFormat = "2006-01-02T15:04:05.000Z07:00"
