package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tribehive/ai-orchestrator/internal/core/domain"
	"github.com/tribehive/ai-orchestrator/internal/store"
	"github.com/tribehive/ai-orchestrator/internal/store/model"
)

// DB defines the interface for database operations (satisfied by *sqlx.DB and *sqlx.Tx)
type DB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Repository implements store.Repository on sqlite.
type Repository struct {
	db       *sqlx.DB // required for starting new transactions
	executor DB       // used for actual queries (can be *sqlx.DB or *sqlx.Tx)
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db, executor: db}
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) WithTx(ctx context.Context, fn func(repo store.Repository) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	txRepo := &Repository{db: r.db, executor: tx}

	if err := fn(txRepo); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *Repository) Requests() store.RequestRepository   { return &requestRepo{db: r.executor} }
func (r *Repository) Responses() store.ResponseRepository { return &responseRepo{db: r.executor} }
func (r *Repository) Templates() store.TemplateRepository { return &templateRepo{db: r.executor} }
func (r *Repository) Configs() store.ConfigRepository     { return &configRepo{db: r.executor} }
func (r *Repository) Logs() store.ProcessingLogRepository { return &logRepo{db: r.executor} }

func notFoundOr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError(msg)
	}
	return err
}

type requestRepo struct {
	db DB
}

func (r *requestRepo) Create(ctx context.Context, req *model.Request) error {
	query := `
	INSERT INTO orchestration_requests (
		id, feature, input_json, requester_id, preferred_model_id,
		params_json, status, priority, created_at, updated_at
	) VALUES (
		:id, :feature, :input_json, :requester_id, :preferred_model_id,
		:params_json, :status, :priority, :created_at, :updated_at
	)`
	_, err := r.db.NamedExecContext(ctx, query, req)
	return err
}

func (r *requestRepo) GetByID(ctx context.Context, id string) (*model.Request, error) {
	var req model.Request
	err := r.db.GetContext(ctx, &req, `SELECT * FROM orchestration_requests WHERE id = ?`, id)
	if err != nil {
		return nil, notFoundOr(err, "request not found: "+id)
	}
	return &req, nil
}

func (r *requestRepo) UpdateStatus(ctx context.Context, id, from, to string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orchestration_requests SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, time.Now().UTC(), id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *requestRepo) ListByStatus(ctx context.Context, status string, limit int) ([]model.Request, error) {
	var reqs []model.Request
	err := r.db.SelectContext(ctx, &reqs,
		`SELECT * FROM orchestration_requests WHERE status = ? ORDER BY created_at DESC LIMIT ?`,
		status, limit)
	return reqs, err
}

func (r *requestRepo) ListByRequester(ctx context.Context, requesterID string, limit int) ([]model.Request, error) {
	var reqs []model.Request
	err := r.db.SelectContext(ctx, &reqs,
		`SELECT * FROM orchestration_requests WHERE requester_id = ? ORDER BY created_at DESC LIMIT ?`,
		requesterID, limit)
	return reqs, err
}

type responseRepo struct {
	db DB
}

func (r *responseRepo) Create(ctx context.Context, resp *model.Response) error {
	query := `
	INSERT INTO orchestration_responses (
		id, request_id, feature, result_json, raw_json, model_id,
		status, error_message, error_trace, duration_ms, created_at
	) VALUES (
		:id, :request_id, :feature, :result_json, :raw_json, :model_id,
		:status, :error_message, :error_trace, :duration_ms, :created_at
	)`
	_, err := r.db.NamedExecContext(ctx, query, resp)
	return err
}

func (r *responseRepo) GetByRequestID(ctx context.Context, requestID string) (*model.Response, error) {
	var resp model.Response
	err := r.db.GetContext(ctx, &resp,
		`SELECT * FROM orchestration_responses WHERE request_id = ?`, requestID)
	if err != nil {
		return nil, notFoundOr(err, "response not found for request: "+requestID)
	}
	return &resp, nil
}

type templateRepo struct {
	db DB
}

func (r *templateRepo) Create(ctx context.Context, tmpl *model.Template) error {
	query := `
	INSERT INTO prompt_templates (
		id, category, feature, body, variables_json, version, is_active, created_at, updated_at
	) VALUES (
		:id, :category, :feature, :body, :variables_json, :version, :is_active, :created_at, :updated_at
	)`
	_, err := r.db.NamedExecContext(ctx, query, tmpl)
	return err
}

func (r *templateRepo) Update(ctx context.Context, tmpl *model.Template) error {
	query := `
	UPDATE prompt_templates SET
		body = :body, variables_json = :variables_json, version = :version,
		is_active = :is_active, updated_at = :updated_at
	WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, tmpl)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError("template not found: " + tmpl.ID)
	}
	return nil
}

func (r *templateRepo) GetByID(ctx context.Context, id string) (*model.Template, error) {
	var tmpl model.Template
	err := r.db.GetContext(ctx, &tmpl, `SELECT * FROM prompt_templates WHERE id = ?`, id)
	if err != nil {
		return nil, notFoundOr(err, "template not found: "+id)
	}
	return &tmpl, nil
}

func (r *templateRepo) List(ctx context.Context, feature, category string, activeOnly bool) ([]model.Template, error) {
	query := `SELECT * FROM prompt_templates WHERE 1=1`
	args := []interface{}{}
	if feature != "" {
		query += ` AND feature = ?`
		args = append(args, feature)
	}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY feature, category, version`

	var tmpls []model.Template
	err := r.db.SelectContext(ctx, &tmpls, query, args...)
	return tmpls, err
}

type configRepo struct {
	db DB
}

func (r *configRepo) Create(ctx context.Context, cfg *model.Config) error {
	query := `
	INSERT INTO prompt_configs (
		id, feature, system_template_id, user_template_id, assistant_template_id,
		is_default, is_active, created_at, updated_at
	) VALUES (
		:id, :feature, :system_template_id, :user_template_id, :assistant_template_id,
		:is_default, :is_active, :created_at, :updated_at
	)`
	_, err := r.db.NamedExecContext(ctx, query, cfg)
	return err
}

func (r *configRepo) Update(ctx context.Context, cfg *model.Config) error {
	query := `
	UPDATE prompt_configs SET
		system_template_id = :system_template_id, user_template_id = :user_template_id,
		assistant_template_id = :assistant_template_id, is_default = :is_default,
		is_active = :is_active, updated_at = :updated_at
	WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, cfg)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError("config not found: " + cfg.ID)
	}
	return nil
}

func (r *configRepo) GetByID(ctx context.Context, id string) (*model.Config, error) {
	var cfg model.Config
	err := r.db.GetContext(ctx, &cfg, `SELECT * FROM prompt_configs WHERE id = ?`, id)
	if err != nil {
		return nil, notFoundOr(err, "config not found: "+id)
	}
	return &cfg, nil
}

func (r *configRepo) GetDefault(ctx context.Context, feature string) (*model.Config, error) {
	var cfg model.Config
	err := r.db.GetContext(ctx, &cfg,
		`SELECT * FROM prompt_configs WHERE feature = ? AND is_default = 1 AND is_active = 1`, feature)
	if err != nil {
		return nil, notFoundOr(err, "no default config for feature: "+feature)
	}
	return &cfg, nil
}

func (r *configRepo) ListByFeature(ctx context.Context, feature string) ([]model.Config, error) {
	var cfgs []model.Config
	err := r.db.SelectContext(ctx, &cfgs,
		`SELECT * FROM prompt_configs WHERE feature = ? ORDER BY created_at`, feature)
	return cfgs, err
}

// SetDefault clears the previous default before setting the new one, so
// exactly one default remains per feature.
func (r *configRepo) SetDefault(ctx context.Context, id string) error {
	cfg, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx,
		`UPDATE prompt_configs SET is_default = 0, updated_at = ? WHERE feature = ? AND is_default = 1`,
		now, cfg.Feature); err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE prompt_configs SET is_default = 1, updated_at = ? WHERE id = ?`, now, id)
	return err
}

type logRepo struct {
	db DB
}

func (r *logRepo) Insert(ctx context.Context, entry *model.ProcessingLog) error {
	query := `
	INSERT INTO processing_logs (
		id, request_id, feature, model_id, status, error_kind, duration_ms, created_at
	) VALUES (
		:id, :request_id, :feature, :model_id, :status, :error_kind, :duration_ms, :created_at
	)`
	_, err := r.db.NamedExecContext(ctx, query, entry)
	return err
}

func (r *logRepo) Recent(ctx context.Context, limit int) ([]model.ProcessingLog, error) {
	var entries []model.ProcessingLog
	err := r.db.SelectContext(ctx, &entries,
		`SELECT * FROM processing_logs ORDER BY created_at DESC LIMIT ?`, limit)
	return entries, err
}
