package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tribehive/ai-orchestrator/internal/analytics"
	"github.com/tribehive/ai-orchestrator/internal/core/domain"
	"github.com/tribehive/ai-orchestrator/internal/core/ports"
	"github.com/tribehive/ai-orchestrator/internal/store"
	"github.com/tribehive/ai-orchestrator/internal/store/model"
	"github.com/tribehive/ai-orchestrator/pkg/schema"
)

const responseCachePrefix = "response:"

// Engine owns the request state machine. It validates and persists incoming
// requests, dispatches PROCESSING requests to the feature-specific client
// call, and records the terminal outcome exactly once.
type Engine struct {
	repo        store.Repository
	cache       ports.CacheService
	registry    ports.ModelRegistry
	renderer    ports.PromptRenderer
	aiEngine    ports.EngineClient
	provider    ports.ProviderClient
	ingestor    analytics.Ingestor
	metrics     ports.Metrics
	logger      *zap.Logger
	responseTTL time.Duration

	// active tracks requests currently in PROCESSING within this instance.
	activeMu sync.Mutex
	active   map[string]struct{}
}

type EngineOptions struct {
	ResponseTTL time.Duration
}

func NewEngine(
	repo store.Repository,
	cache ports.CacheService,
	registry ports.ModelRegistry,
	renderer ports.PromptRenderer,
	aiEngine ports.EngineClient,
	provider ports.ProviderClient,
	ingestor analytics.Ingestor,
	metrics ports.Metrics,
	logger *zap.Logger,
	opts EngineOptions,
) *Engine {
	return &Engine{
		repo:        repo,
		cache:       cache,
		registry:    registry,
		renderer:    renderer,
		aiEngine:    aiEngine,
		provider:    provider,
		ingestor:    ingestor,
		metrics:     metrics,
		logger:      logger,
		responseTTL: opts.ResponseTTL,
		active:      map[string]struct{}{},
	}
}

// CreateRequest validates the feature input and persists a PENDING request.
// Validation failures surface immediately; nothing is persisted for them.
func (e *Engine) CreateRequest(ctx context.Context, feature domain.Feature, input json.RawMessage, requesterID, preferredModelID string, params *domain.GenerationParams, priority domain.Priority) (*domain.OrchestrationRequest, error) {
	if requesterID == "" {
		return nil, domain.RequiredFieldError("requesterId")
	}
	if _, err := domain.ParseInput(feature, input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	req := &domain.OrchestrationRequest{
		ID:               uuid.NewString(),
		Feature:          feature,
		Input:            input,
		RequesterID:      requesterID,
		PreferredModelID: preferredModelID,
		Status:           domain.StatusPending,
		Priority:         priority,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if params != nil {
		req.Parameters = *params
	}

	row, err := requestToModel(req)
	if err != nil {
		return nil, err
	}
	if err := e.repo.Requests().Create(ctx, row); err != nil {
		return nil, err
	}

	e.metrics.RequestCreated(string(feature))
	e.logger.Info("request created",
		zap.String("request_id", req.ID),
		zap.String("feature", string(feature)),
		zap.String("priority", priority.String()))
	return req, nil
}

// GetRequest returns a request by id.
func (e *Engine) GetRequest(ctx context.Context, id string) (*domain.OrchestrationRequest, error) {
	row, err := e.repo.Requests().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return requestFromModel(row)
}

// GetResponse returns the terminal response of a request, read through the
// response cache.
func (e *Engine) GetResponse(ctx context.Context, requestID string) (*domain.OrchestrationResponse, error) {
	key := responseCachePrefix + requestID

	var cached domain.OrchestrationResponse
	if err := e.cache.Get(ctx, key, &cached); err == nil {
		e.metrics.CacheHit("response")
		return &cached, nil
	}
	e.metrics.CacheMiss("response")

	row, err := e.repo.Responses().GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	resp := responseFromModel(row)

	if err := e.cache.Set(ctx, key, resp, e.responseTTL); err != nil {
		e.logger.Warn("response cache write failed", zap.Error(err))
	}
	return resp, nil
}

// Cancel moves a PENDING request to CANCELLED. A request already in a
// terminal status is a conflict; an in-flight one is a bad request.
func (e *Engine) Cancel(ctx context.Context, id string) (bool, error) {
	moved, err := e.repo.Requests().UpdateStatus(ctx, id, string(domain.StatusPending), string(domain.StatusCancelled))
	if err != nil {
		return false, err
	}
	if moved {
		e.metrics.RequestFinished("", "", string(domain.StatusCancelled))
		e.logger.Info("request cancelled", zap.String("request_id", id))
		return true, nil
	}

	row, err := e.repo.Requests().GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	msg := fmt.Sprintf("request %s is %s and can no longer be cancelled", id, row.Status)
	if domain.RequestStatus(row.Status).Terminal() {
		return false, domain.ConflictError(msg)
	}
	return false, domain.BadRequestError(msg)
}

// Process runs one request end to end. Only PENDING requests are admitted;
// anything else is a conflict. The terminal outcome is persisted before the
// error (if any) is re-raised to the caller.
func (e *Engine) Process(ctx context.Context, id string) (*domain.OrchestrationResponse, error) {
	row, err := e.repo.Requests().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req, err := requestFromModel(row)
	if err != nil {
		return nil, err
	}

	if !e.activate(id) {
		return nil, domain.TransitionError(id, domain.StatusProcessing, domain.StatusProcessing)
	}
	defer e.deactivate(id)

	moved, err := e.repo.Requests().UpdateStatus(ctx, id, string(domain.StatusPending), string(domain.StatusProcessing))
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, domain.TransitionError(id, domain.RequestStatus(row.Status), domain.StatusProcessing)
	}

	started := time.Now()
	result, raw, modelID, dispatchErr := e.dispatch(ctx, req)
	duration := time.Since(started)

	if dispatchErr != nil {
		if recordErr := e.recordFailure(ctx, req, modelID, duration, dispatchErr); recordErr != nil {
			e.logger.Error("failed to record processing failure",
				zap.String("request_id", id), zap.Error(recordErr))
		}
		e.metrics.RequestFinished(string(req.Feature), modelID, string(domain.StatusFailed))
		e.metrics.ProcessingDuration(string(req.Feature), modelID, duration.Seconds())
		return nil, dispatchErr
	}

	resp, err := e.recordSuccess(ctx, req, modelID, result, raw, duration)
	if err != nil {
		return nil, err
	}

	e.metrics.RequestFinished(string(req.Feature), modelID, string(domain.StatusCompleted))
	e.metrics.ProcessingDuration(string(req.Feature), modelID, duration.Seconds())
	e.logger.Info("request completed",
		zap.String("request_id", id),
		zap.String("feature", string(req.Feature)),
		zap.String("model", modelID),
		zap.Duration("duration", duration))
	return resp, nil
}

func (e *Engine) activate(id string) bool {
	e.activeMu.Lock()
	defer e.activeMu.Unlock()
	if _, busy := e.active[id]; busy {
		return false
	}
	e.active[id] = struct{}{}
	return true
}

func (e *Engine) deactivate(id string) {
	e.activeMu.Lock()
	delete(e.active, id)
	e.activeMu.Unlock()
}

// ActiveCount reports how many requests this instance is processing.
func (e *Engine) ActiveCount() int {
	e.activeMu.Lock()
	defer e.activeMu.Unlock()
	return len(e.active)
}

// dispatch resolves the model, renders prompts where the feature consumes
// them, and invokes exactly one client call for the request's feature and
// sub-operation.
func (e *Engine) dispatch(ctx context.Context, req *domain.OrchestrationRequest) (result, raw json.RawMessage, modelID string, err error) {
	in, err := domain.ParseInput(req.Feature, req.Input)
	if err != nil {
		return nil, nil, "", err
	}

	mc, err := e.registry.ModelForFeature(ctx, req.Feature, req.PreferredModelID)
	if err != nil {
		return nil, nil, "", err
	}
	modelID = mc.ID

	switch input := in.(type) {
	case *domain.MatchingInput:
		result, raw, err = e.dispatchMatching(ctx, input, mc)
	case *domain.PersonalityInput:
		result, raw, err = e.dispatchPersonality(ctx, input, mc)
	case *domain.EngagementInput:
		result, raw, err = e.dispatchEngagement(ctx, input, mc)
	case *domain.RecommendationInput:
		result, raw, err = e.dispatchRecommendation(ctx, input, mc)
	case *domain.ConversationInput:
		result, raw, err = e.dispatchConversation(ctx, input, mc, &req.Parameters)
	default:
		err = domain.BadRequestError(fmt.Sprintf("unknown feature: %q", req.Feature))
	}
	return result, raw, modelID, err
}

// renderOptions renders the feature's default prompt configuration when the
// input carries the variables the canonical templates declare, and attaches
// the text to the outbound options map.
func (e *Engine) renderOptions(ctx context.Context, feature domain.Feature, vars map[string]any, opts map[string]any) (map[string]any, error) {
	if vars == nil {
		return opts, nil
	}
	rendered, err := e.renderer.RenderForFeature(ctx, feature, vars)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = map[string]any{}
	}
	if sys, ok := rendered[domain.CategorySystem]; ok {
		opts["system_prompt"] = sys.Text
	}
	if user, ok := rendered[domain.CategoryUser]; ok {
		opts["rendered_prompt"] = user.Text
		opts["estimated_tokens"] = user.EstimatedTokens
	}
	return opts, nil
}

var matchingTypes = map[domain.MatchingOp]string{
	domain.MatchUserToTribes:   "user_tribe",
	domain.MatchTribeFormation: "tribe_formation",
	domain.MatchCompatibility:  "compatibility",
}

func (e *Engine) dispatchMatching(ctx context.Context, in *domain.MatchingInput, mc *domain.ModelConfig) (json.RawMessage, json.RawMessage, error) {
	wireType, ok := matchingTypes[in.Operation]
	if !ok {
		return nil, nil, domain.BadRequestError(fmt.Sprintf("unknown matching operation: %q", in.Operation))
	}

	data := map[string]any{}
	var promptVars map[string]any
	switch in.Operation {
	case domain.MatchUserToTribes:
		data["user_profile"] = in.UserProfile
		data["tribes"] = in.Tribes
		promptVars = map[string]any{"userProfile": in.UserProfile, "tribes": anySlice(in.Tribes)}
	case domain.MatchTribeFormation:
		data["user_profiles"] = in.UserProfiles
	case domain.MatchCompatibility:
		data["user_profile"] = in.UserProfile
		data["target_profile"] = in.TargetProfile
	}

	var opts map[string]any
	if len(in.FactorWeights) > 0 {
		opts = map[string]any{"factor_weights": in.FactorWeights}
	}
	opts, err := e.renderOptions(ctx, domain.FeatureMatching, promptVars, opts)
	if err != nil {
		return nil, nil, err
	}

	res, err := e.aiEngine.Matching(ctx, &schema.MatchingRequest{
		MatchingType: wireType,
		Data:         data,
		Options:      opts,
		ModelName:    mc.ID,
	})
	if err != nil {
		return nil, nil, err
	}
	return engineResultField(res, matchingResultField(in.Operation))
}

func matchingResultField(op domain.MatchingOp) string {
	switch op {
	case domain.MatchTribeFormation:
		return "tribes"
	case domain.MatchCompatibility:
		return "compatibility"
	}
	return "matches"
}

var personalityTypes = map[domain.PersonalityOp]string{
	domain.PersonalityAssessment:         "assessment",
	domain.PersonalityCommunicationStyle: "communication_style",
	domain.PersonalityInterests:          "interests",
}

func (e *Engine) dispatchPersonality(ctx context.Context, in *domain.PersonalityInput, mc *domain.ModelConfig) (json.RawMessage, json.RawMessage, error) {
	wireType, ok := personalityTypes[in.Operation]
	if !ok {
		return nil, nil, domain.BadRequestError(fmt.Sprintf("unknown personality operation: %q", in.Operation))
	}

	assessment := in.AssessmentData
	var promptVars map[string]any
	switch in.Operation {
	case domain.PersonalityAssessment:
		promptVars = map[string]any{"assessmentData": in.AssessmentData}
	case domain.PersonalityCommunicationStyle:
		assessment = in.InteractionData
	case domain.PersonalityInterests:
		assessment = in.ProfileData
	}

	opts, err := e.renderOptions(ctx, domain.FeaturePersonality, promptVars, nil)
	if err != nil {
		return nil, nil, err
	}

	res, err := e.aiEngine.Personality(ctx, &schema.PersonalityRequest{
		AnalysisType:   wireType,
		AssessmentData: assessment,
		Options:        opts,
		ModelName:      mc.ID,
	})
	if err != nil {
		return nil, nil, err
	}
	return engineResultField(res, "traits")
}

var engagementTypes = map[domain.EngagementOp]string{
	domain.EngagementConversationPrompts: "prompts",
	domain.EngagementChallenge:           "challenges",
	domain.EngagementActivity:            "activities",
}

func (e *Engine) dispatchEngagement(ctx context.Context, in *domain.EngagementInput, mc *domain.ModelConfig) (json.RawMessage, json.RawMessage, error) {
	wireType, ok := engagementTypes[in.Operation]
	if !ok {
		return nil, nil, domain.BadRequestError(fmt.Sprintf("unknown engagement operation: %q", in.Operation))
	}

	opts, err := e.renderOptions(ctx, domain.FeatureEngagement, map[string]any{"tribeData": in.TribeData}, nil)
	if err != nil {
		return nil, nil, err
	}

	engCtx := in.TribeData
	if len(in.Context) > 0 {
		engCtx = mergeMaps(in.TribeData, in.Context)
	}

	res, err := e.aiEngine.Engagement(ctx, &schema.EngagementRequest{
		EngagementType: wireType,
		Context:        engCtx,
		Options:        opts,
		ModelName:      mc.ID,
	})
	if err != nil {
		return nil, nil, err
	}
	return engineResultField(res, engagementResultField(in.Operation))
}

func engagementResultField(op domain.EngagementOp) string {
	switch op {
	case domain.EngagementChallenge:
		return "challenge"
	case domain.EngagementActivity:
		return "activities"
	}
	return "prompts"
}

var recommendationTypes = map[domain.RecommendationOp]string{
	domain.RecommendEvents:     "events",
	domain.RecommendActivities: "activities",
	domain.RecommendContent:    "content",
}

func (e *Engine) dispatchRecommendation(ctx context.Context, in *domain.RecommendationInput, mc *domain.ModelConfig) (json.RawMessage, json.RawMessage, error) {
	wireType, ok := recommendationTypes[in.Operation]
	if !ok {
		return nil, nil, domain.BadRequestError(fmt.Sprintf("unknown recommendation operation: %q", in.Operation))
	}

	promptVars := map[string]any{"userData": in.UserData}
	if len(in.Context) > 0 {
		promptVars["context"] = in.Context
	}
	opts, err := e.renderOptions(ctx, domain.FeatureRecommendation, promptVars, nil)
	if err != nil {
		return nil, nil, err
	}

	res, err := e.aiEngine.Recommendations(ctx, &schema.RecommendationRequest{
		RecommendationType: wireType,
		UserData:           in.UserData,
		Context:            in.Context,
		Options:            opts,
		ModelName:          mc.ID,
	})
	if err != nil {
		return nil, nil, err
	}
	return engineResultField(res, "recommendations")
}

func (e *Engine) dispatchConversation(ctx context.Context, in *domain.ConversationInput, mc *domain.ModelConfig, params *domain.GenerationParams) (json.RawMessage, json.RawMessage, error) {
	history := make([]any, 0, len(in.Messages))
	for _, m := range in.Messages {
		history = append(history, fmt.Sprintf("%s: %s", m.Sender, m.Text))
	}

	rendered, err := e.renderer.RenderForFeature(ctx, domain.FeatureConversation, map[string]any{
		"messages": history,
	})
	if err != nil {
		return nil, nil, err
	}

	messages := []schema.ChatMessage{}
	if sys, ok := rendered[domain.CategorySystem]; ok {
		messages = append(messages, schema.ChatMessage{Role: "system", Content: sys.Text})
	}
	messages = append(messages, schema.ChatMessage{Role: "user", Content: rendered[domain.CategoryUser].Text})

	chatReq := &schema.ChatRequest{
		Model:    mc.ID,
		Messages: messages,
	}
	applyParams(chatReq, params, mc)

	resp, err := e.provider.ChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, nil, domain.ServiceUnavailableError("provider returned no completion choices", nil)
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, nil, domain.InternalError("encode provider response", err)
	}
	text := resp.Choices[0].Message.Content
	payload := map[string]any{
		"operation": string(in.Operation),
		"text":      text,
		"model":     resp.Model,
	}
	if structured, ok := schema.ExtractObject(text); ok {
		payload["structured"] = structured
	}
	result, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, domain.InternalError("encode conversation result", err)
	}
	return result, raw, nil
}

func applyParams(req *schema.ChatRequest, params *domain.GenerationParams, mc *domain.ModelConfig) {
	merged := mc.DefaultParams
	if params != nil {
		if params.Temperature != nil {
			merged.Temperature = params.Temperature
		}
		if params.TopP != nil {
			merged.TopP = params.TopP
		}
		if params.MaxTokens != nil {
			merged.MaxTokens = params.MaxTokens
		}
		if params.FrequencyPenalty != nil {
			merged.FrequencyPenalty = params.FrequencyPenalty
		}
		if params.PresencePenalty != nil {
			merged.PresencePenalty = params.PresencePenalty
		}
		if len(params.Stop) > 0 {
			merged.Stop = params.Stop
		}
	}

	req.Temperature = merged.Temperature
	req.TopP = merged.TopP
	req.FrequencyPenalty = merged.FrequencyPenalty
	req.PresencePenalty = merged.PresencePenalty
	req.Stop = merged.Stop
	if merged.MaxTokens != nil {
		req.MaxTokens = *merged.MaxTokens
	} else if mc.MaxOutputTokens > 0 {
		req.MaxTokens = mc.MaxOutputTokens
	}
}

// engineResultField splits an engine payload into the normalized result
// (the operation's top-level field) and the raw payload.
func engineResultField(res *schema.EngineResult, field string) (json.RawMessage, json.RawMessage, error) {
	value, ok := res.Field(field)
	if !ok {
		return nil, nil, domain.ServiceUnavailableError(
			fmt.Sprintf("engine payload is missing %q", field), nil)
	}
	return value, res.Payload, nil
}

// recordSuccess persists the COMPLETED transition, the response row and the
// audit entry atomically, then populates the response cache.
func (e *Engine) recordSuccess(ctx context.Context, req *domain.OrchestrationRequest, modelID string, result, raw json.RawMessage, duration time.Duration) (*domain.OrchestrationResponse, error) {
	resp := &domain.OrchestrationResponse{
		ID:         uuid.NewString(),
		RequestID:  req.ID,
		Feature:    req.Feature,
		Result:     result,
		Raw:        raw,
		ModelID:    modelID,
		Status:     domain.StatusCompleted,
		DurationMS: duration.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}

	err := e.repo.WithTx(ctx, func(repo store.Repository) error {
		moved, err := repo.Requests().UpdateStatus(ctx, req.ID, string(domain.StatusProcessing), string(domain.StatusCompleted))
		if err != nil {
			return err
		}
		if !moved {
			return domain.TransitionError(req.ID, domain.StatusProcessing, domain.StatusCompleted)
		}
		return repo.Responses().Create(ctx, responseToModel(resp))
	})
	if err != nil {
		return nil, err
	}

	e.ingestor.Record(&model.ProcessingLog{
		ID:         uuid.NewString(),
		RequestID:  req.ID,
		Feature:    string(req.Feature),
		ModelID:    modelID,
		Status:     string(domain.StatusCompleted),
		DurationMS: resp.DurationMS,
		CreatedAt:  resp.CreatedAt,
	})

	if err := e.cache.Set(ctx, responseCachePrefix+req.ID, resp, e.responseTTL); err != nil {
		e.logger.Warn("response cache write failed", zap.Error(err))
	}
	return resp, nil
}

// recordFailure persists the FAILED transition with the error message and a
// best-effort stack trace. The dispatch error itself is re-raised by the
// caller after this returns.
func (e *Engine) recordFailure(ctx context.Context, req *domain.OrchestrationRequest, modelID string, duration time.Duration, dispatchErr error) error {
	resp := &domain.OrchestrationResponse{
		ID:           uuid.NewString(),
		RequestID:    req.ID,
		Feature:      req.Feature,
		ModelID:      modelID,
		Status:       domain.StatusFailed,
		ErrorMessage: dispatchErr.Error(),
		ErrorTrace:   string(debug.Stack()),
		DurationMS:   duration.Milliseconds(),
		CreatedAt:    time.Now().UTC(),
	}

	err := e.repo.WithTx(ctx, func(repo store.Repository) error {
		moved, err := repo.Requests().UpdateStatus(ctx, req.ID, string(domain.StatusProcessing), string(domain.StatusFailed))
		if err != nil {
			return err
		}
		if !moved {
			return domain.TransitionError(req.ID, domain.StatusProcessing, domain.StatusFailed)
		}
		return repo.Responses().Create(ctx, responseToModel(resp))
	})
	if err != nil {
		return err
	}

	e.ingestor.Record(&model.ProcessingLog{
		ID:         uuid.NewString(),
		RequestID:  req.ID,
		Feature:    string(req.Feature),
		ModelID:    modelID,
		Status:     string(domain.StatusFailed),
		ErrorKind:  string(domain.KindOf(dispatchErr)),
		DurationMS: resp.DurationMS,
		CreatedAt:  resp.CreatedAt,
	})

	e.logger.Error("request failed",
		zap.String("request_id", req.ID),
		zap.String("feature", string(req.Feature)),
		zap.String("error_kind", string(domain.KindOf(dispatchErr))),
		zap.Error(dispatchErr))
	return nil
}

// HealthStatus aggregates the engine's own state with its dependencies.
type HealthStatus struct {
	Status        string               `json:"status"`
	ActiveCount   int                  `json:"active_count"`
	ModelRegistry ports.RegistryHealth `json:"model_registry"`
	Providers     map[string]string    `json:"providers"`
}

// Health probes every provider client and reports the registry state.
func (e *Engine) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:        "ok",
		ActiveCount:   e.ActiveCount(),
		ModelRegistry: e.registry.Health(ctx),
		Providers:     map[string]string{},
	}

	if err := e.aiEngine.Health(ctx); err != nil {
		status.Providers["ai-engine"] = err.Error()
		status.Status = "degraded"
	} else {
		status.Providers["ai-engine"] = "ok"
	}
	if err := e.provider.Health(ctx); err != nil {
		status.Providers["openrouter"] = err.Error()
		status.Status = "degraded"
	} else {
		status.Providers["openrouter"] = "ok"
	}
	return status
}

func mergeMaps(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func anySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func requestToModel(req *domain.OrchestrationRequest) (*model.Request, error) {
	params, err := json.Marshal(req.Parameters)
	if err != nil {
		return nil, domain.InternalError("encode generation parameters", err)
	}
	row := &model.Request{
		ID:          req.ID,
		Feature:     string(req.Feature),
		InputJSON:   string(req.Input),
		RequesterID: req.RequesterID,
		ParamsJSON:  string(params),
		Status:      string(req.Status),
		Priority:    int(req.Priority),
		CreatedAt:   req.CreatedAt,
		UpdatedAt:   req.UpdatedAt,
	}
	if req.PreferredModelID != "" {
		row.PreferredModelID = sql.NullString{String: req.PreferredModelID, Valid: true}
	}
	return row, nil
}

func requestFromModel(row *model.Request) (*domain.OrchestrationRequest, error) {
	req := &domain.OrchestrationRequest{
		ID:          row.ID,
		Feature:     domain.Feature(row.Feature),
		Input:       json.RawMessage(row.InputJSON),
		RequesterID: row.RequesterID,
		Status:      domain.RequestStatus(row.Status),
		Priority:    domain.Priority(row.Priority),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.PreferredModelID.Valid {
		req.PreferredModelID = row.PreferredModelID.String
	}
	if row.ParamsJSON != "" {
		if err := json.Unmarshal([]byte(row.ParamsJSON), &req.Parameters); err != nil {
			return nil, domain.InternalError("corrupt generation parameters", err)
		}
	}
	return req, nil
}

func responseToModel(resp *domain.OrchestrationResponse) *model.Response {
	row := &model.Response{
		ID:         resp.ID,
		RequestID:  resp.RequestID,
		Feature:    string(resp.Feature),
		ModelID:    resp.ModelID,
		Status:     string(resp.Status),
		DurationMS: resp.DurationMS,
		CreatedAt:  resp.CreatedAt,
	}
	if len(resp.Result) > 0 {
		row.ResultJSON = sql.NullString{String: string(resp.Result), Valid: true}
	}
	if len(resp.Raw) > 0 {
		row.RawJSON = sql.NullString{String: string(resp.Raw), Valid: true}
	}
	if resp.ErrorMessage != "" {
		row.ErrorMessage = sql.NullString{String: resp.ErrorMessage, Valid: true}
	}
	if resp.ErrorTrace != "" {
		row.ErrorTrace = sql.NullString{String: resp.ErrorTrace, Valid: true}
	}
	return row
}

func responseFromModel(row *model.Response) *domain.OrchestrationResponse {
	resp := &domain.OrchestrationResponse{
		ID:         row.ID,
		RequestID:  row.RequestID,
		Feature:    domain.Feature(row.Feature),
		ModelID:    row.ModelID,
		Status:     domain.RequestStatus(row.Status),
		DurationMS: row.DurationMS,
		CreatedAt:  row.CreatedAt,
	}
	if row.ResultJSON.Valid {
		resp.Result = json.RawMessage(row.ResultJSON.String)
	}
	if row.RawJSON.Valid {
		resp.Raw = json.RawMessage(row.RawJSON.String)
	}
	if row.ErrorMessage.Valid {
		resp.ErrorMessage = row.ErrorMessage.String
	}
	if row.ErrorTrace.Valid {
		resp.ErrorTrace = row.ErrorTrace.String
	}
	return resp
}

var _ ports.Processor = (*Engine)(nil)
