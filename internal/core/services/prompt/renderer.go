package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tribehive/ai-orchestrator/internal/core/domain"
	"github.com/tribehive/ai-orchestrator/internal/core/ports"
	"github.com/tribehive/ai-orchestrator/internal/store"
	"github.com/tribehive/ai-orchestrator/internal/store/model"
)

var (
	// placeholderRegex matches {{var}}, {{#if var}} and {{#each var}}.
	// Closing tags and {{else}}/{{this}} are filtered out after matching.
	placeholderRegex = regexp.MustCompile(`\{\{\s*(?:#(?:if|each)\s+)?(\w+)\s*\}\}`)

	ifBlockRegex   = regexp.MustCompile(`(?s)\{\{#if\s+(\w+)\}\}(.*?)(?:\{\{else\}\}(.*?))?\{\{/if\}\}`)
	eachBlockRegex = regexp.MustCompile(`(?s)\{\{#each\s+(\w+)\}\}(.*?)\{\{/each\}\}`)
	plainVarRegex  = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)
)

// ExtractPlaceholders returns the sorted set of bare variable names a
// template body references, including variables named by conditional and
// loop helpers.
func ExtractPlaceholders(body string) []string {
	seen := map[string]struct{}{}
	for _, m := range placeholderRegex.FindAllStringSubmatch(body, -1) {
		name := m[1]
		if name == "else" || name == "this" {
			continue
		}
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ValidateTemplate enforces the placeholder/variable bijection and checks
// declared variable types. Called at template create and update time.
func ValidateTemplate(tmpl *domain.PromptTemplate) error {
	placeholders := ExtractPlaceholders(tmpl.Body)

	declared := map[string]struct{}{}
	fields := map[string]string{}
	for _, v := range tmpl.Variables {
		switch v.Type {
		case domain.VarString, domain.VarNumber, domain.VarBoolean, domain.VarArray, domain.VarObject:
		default:
			fields[v.Name] = fmt.Sprintf("unknown variable type %q", v.Type)
		}
		if _, dup := declared[v.Name]; dup {
			fields[v.Name] = "declared more than once"
		}
		declared[v.Name] = struct{}{}
	}

	for _, p := range placeholders {
		if _, ok := declared[p]; !ok {
			fields[p] = "placeholder has no declared variable"
		}
	}
	for name := range declared {
		if !contains(placeholders, name) {
			fields[name] = "declared variable never appears in body"
		}
	}

	if len(fields) > 0 {
		return domain.ValidationError(fields)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Renderer implements ports.PromptRenderer on top of the template store,
// with a read-through cache for default configurations.
type Renderer struct {
	repo        store.Repository
	cache       ports.CacheService
	logger      *zap.Logger
	templateTTL time.Duration
}

func NewRenderer(repo store.Repository, cache ports.CacheService, logger *zap.Logger, templateTTL time.Duration) *Renderer {
	return &Renderer{
		repo:        repo,
		cache:       cache,
		logger:      logger,
		templateTTL: templateTTL,
	}
}

// Render substitutes variables into a template and returns the rendered text
// with its token estimate.
func (r *Renderer) Render(tmpl *domain.PromptTemplate, vars map[string]any) (*domain.RenderedPrompt, error) {
	resolved, used, err := resolveVariables(tmpl, vars)
	if err != nil {
		return nil, err
	}

	text := substitute(tmpl.Body, resolved)
	text = OptimizeForFeature(text, tmpl.Feature)

	return &domain.RenderedPrompt{
		TemplateID:      tmpl.ID,
		Text:            text,
		EstimatedTokens: EstimateTokens(text),
		VariablesUsed:   used,
	}, nil
}

// RenderConfig renders the system, user and (if present) assistant templates
// of a configuration against the same variable set.
func (r *Renderer) RenderConfig(ctx context.Context, cfg *domain.PromptConfig, vars map[string]any) (map[domain.TemplateCategory]*domain.RenderedPrompt, error) {
	ids := map[domain.TemplateCategory]string{
		domain.CategorySystem: cfg.SystemTemplateID,
		domain.CategoryUser:   cfg.UserTemplateID,
	}
	if cfg.AssistantTemplateID != "" {
		ids[domain.CategoryAssistant] = cfg.AssistantTemplateID
	}

	out := make(map[domain.TemplateCategory]*domain.RenderedPrompt, len(ids))
	for category, id := range ids {
		tmpl, err := r.loadTemplate(ctx, id)
		if err != nil {
			return nil, err
		}
		rendered, err := r.renderCached(ctx, tmpl, vars)
		if err != nil {
			return nil, err
		}
		out[category] = rendered
	}
	return out, nil
}

// renderKey derives the cache key for a rendered prompt from the template
// identity and a digest of the variable set. The version component keeps
// renders of a superseded template body from being served.
func renderKey(tmpl *domain.PromptTemplate, vars map[string]any) (string, bool) {
	payload, err := json.Marshal(vars)
	if err != nil {
		return "", false
	}
	h := fnv.New64a()
	_, _ = h.Write(payload)
	return fmt.Sprintf("render:%s:v%d:%x", tmpl.ID, tmpl.Version, h.Sum64()), true
}

// renderCached reads a rendered prompt through the cache. A miss, a cache
// error or an unhashable variable set all fall back to a fresh render.
func (r *Renderer) renderCached(ctx context.Context, tmpl *domain.PromptTemplate, vars map[string]any) (*domain.RenderedPrompt, error) {
	key, ok := renderKey(tmpl, vars)
	if !ok {
		return r.Render(tmpl, vars)
	}

	var cached domain.RenderedPrompt
	if err := r.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	rendered, err := r.Render(tmpl, vars)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, key, rendered, r.templateTTL); err != nil {
		r.logger.Warn("render cache write failed", zap.Error(err))
	}
	return rendered, nil
}

// RenderForFeature resolves the feature's default configuration, creating
// the canonical defaults when none exists, and renders it.
func (r *Renderer) RenderForFeature(ctx context.Context, feature domain.Feature, vars map[string]any) (map[domain.TemplateCategory]*domain.RenderedPrompt, error) {
	cfg, err := r.defaultConfig(ctx, feature)
	if err != nil {
		if !domain.IsKind(err, domain.KindNotFound) {
			return nil, err
		}
		if err := r.EnsureDefaults(ctx, feature); err != nil {
			return nil, err
		}
		cfg, err = r.defaultConfig(ctx, feature)
		if err != nil {
			return nil, err
		}
	}
	return r.RenderConfig(ctx, cfg, vars)
}

func (r *Renderer) defaultConfig(ctx context.Context, feature domain.Feature) (*domain.PromptConfig, error) {
	key := "promptcfg:" + string(feature)

	var cached domain.PromptConfig
	if err := r.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	m, err := r.repo.Configs().GetDefault(ctx, string(feature))
	if err != nil {
		return nil, err
	}
	cfg := ConfigFromModel(m)

	if err := r.cache.Set(ctx, key, cfg, r.templateTTL); err != nil {
		r.logger.Warn("config cache write failed", zap.Error(err))
	}
	return cfg, nil
}

func (r *Renderer) loadTemplate(ctx context.Context, id string) (*domain.PromptTemplate, error) {
	key := "tpl:" + id

	var cached domain.PromptTemplate
	if err := r.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	m, err := r.repo.Templates().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tmpl, err := TemplateFromModel(m)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, tmpl, r.templateTTL); err != nil {
		r.logger.Warn("template cache write failed", zap.Error(err))
	}
	return tmpl, nil
}

// InvalidateTemplate drops a template and its feature config from the cache
// after an update.
func (r *Renderer) InvalidateTemplate(ctx context.Context, id string, feature domain.Feature) {
	_ = r.cache.Delete(ctx, "tpl:"+id)
	_ = r.cache.Delete(ctx, "promptcfg:"+string(feature))
}

// resolveVariables checks required presence and runtime types, then merges
// defaults for absent optional variables.
func resolveVariables(tmpl *domain.PromptTemplate, vars map[string]any) (map[string]any, []string, error) {
	resolved := make(map[string]any, len(tmpl.Variables))
	used := make([]string, 0, len(tmpl.Variables))

	for _, decl := range tmpl.Variables {
		val, present := vars[decl.Name]
		if !present || val == nil {
			if decl.Required {
				return nil, nil, domain.RequiredFieldError(decl.Name)
			}
			if decl.Default != nil {
				resolved[decl.Name] = decl.Default
				used = append(used, decl.Name)
			}
			continue
		}
		if !typeMatches(decl.Type, val) {
			return nil, nil, domain.InvalidTypeError(decl.Name, string(decl.Type))
		}
		resolved[decl.Name] = val
		used = append(used, decl.Name)
	}

	sort.Strings(used)
	return resolved, used, nil
}

func typeMatches(t domain.VariableType, val any) bool {
	switch t {
	case domain.VarString:
		_, ok := val.(string)
		return ok
	case domain.VarNumber:
		switch val.(type) {
		case float64, float32, int, int32, int64, json.Number:
			return true
		}
		return false
	case domain.VarBoolean:
		_, ok := val.(bool)
		return ok
	case domain.VarArray:
		return reflect.ValueOf(val).Kind() == reflect.Slice
	case domain.VarObject:
		return reflect.ValueOf(val).Kind() == reflect.Map
	}
	return false
}

// substitute expands conditional and loop helpers first, then plain
// placeholders. Unresolved placeholders are replaced with the empty string
// so no {{}} tokens survive rendering.
func substitute(body string, vars map[string]any) string {
	body = ifBlockRegex.ReplaceAllStringFunc(body, func(block string) string {
		m := ifBlockRegex.FindStringSubmatch(block)
		if truthy(vars[m[1]]) {
			return m[2]
		}
		return m[3]
	})

	body = eachBlockRegex.ReplaceAllStringFunc(body, func(block string) string {
		m := eachBlockRegex.FindStringSubmatch(block)
		val := vars[m[1]]
		rv := reflect.ValueOf(val)
		if val == nil || rv.Kind() != reflect.Slice {
			return ""
		}
		var sb strings.Builder
		for i := 0; i < rv.Len(); i++ {
			sb.WriteString(strings.ReplaceAll(m[2], "{{this}}", stringify(rv.Index(i).Interface())))
		}
		return sb.String()
	})

	return plainVarRegex.ReplaceAllStringFunc(body, func(ph string) string {
		m := plainVarRegex.FindStringSubmatch(ph)
		val, ok := vars[m[1]]
		if !ok {
			return ""
		}
		return stringify(val)
	})
}

func truthy(val any) bool {
	switch v := val.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case int:
		return v != 0
	}
	rv := reflect.ValueOf(val)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map {
		return rv.Len() > 0
	}
	return true
}

func stringify(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case json.Number:
		return v.String()
	}
	b, err := json.Marshal(val)
	if err != nil {
		return fmt.Sprintf("%v", val)
	}
	return string(b)
}

// TemplateFromModel decodes a stored template row into the domain shape.
func TemplateFromModel(m *model.Template) (*domain.PromptTemplate, error) {
	var variables []domain.TemplateVariable
	if m.VariablesJSON != "" {
		if err := json.Unmarshal([]byte(m.VariablesJSON), &variables); err != nil {
			return nil, domain.InternalError("corrupt template variables", err)
		}
	}
	return &domain.PromptTemplate{
		ID:        m.ID,
		Category:  domain.TemplateCategory(m.Category),
		Feature:   domain.Feature(m.Feature),
		Body:      m.Body,
		Variables: variables,
		Version:   m.Version,
		Active:    m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

// TemplateToModel encodes a domain template for persistence.
func TemplateToModel(t *domain.PromptTemplate) (*model.Template, error) {
	variables, err := json.Marshal(t.Variables)
	if err != nil {
		return nil, domain.InternalError("encode template variables", err)
	}
	return &model.Template{
		ID:            t.ID,
		Category:      string(t.Category),
		Feature:       string(t.Feature),
		Body:          t.Body,
		VariablesJSON: string(variables),
		Version:       t.Version,
		IsActive:      t.Active,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}, nil
}

// ConfigFromModel decodes a stored configuration row.
func ConfigFromModel(m *model.Config) *domain.PromptConfig {
	cfg := &domain.PromptConfig{
		ID:               m.ID,
		Feature:          domain.Feature(m.Feature),
		SystemTemplateID: m.SystemTemplateID,
		UserTemplateID:   m.UserTemplateID,
		IsDefault:        m.IsDefault,
		Active:           m.IsActive,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.AssistantTemplateID.Valid {
		cfg.AssistantTemplateID = m.AssistantTemplateID.String
	}
	return cfg
}

var _ ports.PromptRenderer = (*Renderer)(nil)
