package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ashwinyue/tool-catalog/internal/logger"
	"github.com/ashwinyue/tool-catalog/internal/metrics"
	"github.com/ashwinyue/tool-catalog/internal/model"
	"github.com/ashwinyue/tool-catalog/internal/repository"
	"github.com/ashwinyue/tool-catalog/internal/schema"
	"github.com/ashwinyue/tool-catalog/internal/scoring"
	"github.com/ashwinyue/tool-catalog/internal/service/search"
)

var (
	ErrToolNotFound   = errors.New("tool not found")
	ErrToolNameExists = errors.New("tool name already exists")
	ErrInvalidTool    = errors.New("invalid tool")
	ErrInvalidSchema  = errors.New("invalid schema")
	ErrInvalidAction  = errors.New("invalid usage action")
)

// Service 工具服务
type Service struct {
	repo    *repository.Repositories
	indexer search.Indexer
	metrics *metrics.Metrics
	log     *logger.Logger
	now     func() time.Time
}

// NewService 创建工具服务
func NewService(repo *repository.Repositories, indexer search.Indexer, m *metrics.Metrics, log *logger.Logger) *Service {
	if indexer == nil {
		indexer = search.Nop{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		repo:    repo,
		indexer: indexer,
		metrics: m,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock 替换时钟，用于测试
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateTool 创建工具
func (s *Service) CreateTool(ctx context.Context, req *CreateToolRequest) (*model.Tool, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidTool)
	}
	if err := validateSchemas(req.InputSchema, req.OutputSchema); err != nil {
		return nil, err
	}

	tool := &model.Tool{
		ID:           uuid.New().String(),
		Name:         name,
		Description:  strings.TrimSpace(req.Description),
		Category:     model.Slugify(req.Category),
		Version:      strings.TrimSpace(req.Version),
		Author:       strings.TrimSpace(req.Author),
		SourceType:   strings.TrimSpace(req.SourceType),
		SourceURL:    strings.TrimSpace(req.SourceURL),
		InputSchema:  schemaColumn(req.InputSchema),
		OutputSchema: schemaColumn(req.OutputSchema),
		Tags:         model.NormalizeSet(req.Tags),
		Chains:       model.NormalizeSet(req.Chains),
		Protocols:    model.NormalizeSet(req.Protocols),
	}
	res := tool.SetQualityFlags(req.Flags)

	err := s.repo.Transaction(ctx, func(tx *repository.Repositories) error {
		if _, err := tx.Tool.GetByName(ctx, name); err == nil {
			return ErrToolNameExists
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := tx.Tool.Create(ctx, tool); err != nil {
			return err
		}
		if tool.Category != "" {
			return tx.Category.Increment(ctx, tool.Category, strings.TrimSpace(req.Category))
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrToolNameExists
		}
		if errors.Is(err, ErrToolNameExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create tool: %w", err)
	}

	s.metrics.IncScore(string(res.Grade))
	s.index(ctx, tool)
	s.log.Info("tool created", "id", tool.ID, "name", tool.Name, "grade", tool.Grade)
	return tool, nil
}

// GetTool 获取工具
func (s *Service) GetTool(ctx context.Context, id string) (*model.Tool, error) {
	tool, err := s.repo.Tool.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return tool, nil
}

// GetScore 获取工具评分明细
func (s *Service) GetScore(ctx context.Context, id string) (*Score, error) {
	tool, err := s.GetTool(ctx, id)
	if err != nil {
		return nil, err
	}
	flags := tool.QualityFlags()
	score := &Score{ToolID: tool.ID, Flags: flags}
	// 用当前规则重算，不依赖库中存量字段
	score.Result = scoring.Compute(flags)
	return score, nil
}

// ListTools 列出工具
func (s *Service) ListTools(ctx context.Context, req *ListToolsRequest) ([]*model.Tool, int64, error) {
	page := req.Page.Normalize()
	filter := repository.ToolFilter{
		Category: model.Slugify(req.Category),
		Grade:    req.Grade,
	}
	tools, total, err := s.repo.Tool.List(ctx, filter, page.Offset(), page.Size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tools: %w", err)
	}
	return tools, total, nil
}

// SearchTools 搜索工具，配置了 Elasticsearch 时优先使用，失败后退回数据库
func (s *Service) SearchTools(ctx context.Context, req *SearchToolsRequest) ([]*model.Tool, int64, error) {
	page := req.Page.Normalize()

	if s.indexer.Enabled() {
		tools, total, err := s.searchIndex(ctx, req, page.Offset(), page.Size)
		if err == nil {
			return tools, total, nil
		}
		s.log.Warn("search index unavailable, falling back to database", "error", err)
	}

	filter := repository.ToolFilter{
		Query:    strings.TrimSpace(req.Query),
		Category: model.Slugify(req.Category),
		Chain:    req.Chain,
		Protocol: req.Protocol,
		Tag:      req.Tag,
		Grade:    req.Grade,
		MinScore: req.MinScore,
	}
	tools, total, err := s.repo.Tool.List(ctx, filter, page.Offset(), page.Size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search tools: %w", err)
	}
	return tools, total, nil
}

func (s *Service) searchIndex(ctx context.Context, req *SearchToolsRequest, offset, size int) ([]*model.Tool, int64, error) {
	ids, total, err := s.indexer.Search(ctx, search.Query{
		Text:     req.Query,
		Category: model.Slugify(req.Category),
		Chain:    req.Chain,
		Protocol: req.Protocol,
		Tag:      req.Tag,
		Grade:    req.Grade,
		MinScore: req.MinScore,
		From:     offset,
		Size:     size,
	})
	if err != nil {
		return nil, 0, err
	}

	found, err := s.repo.Tool.GetByIDs(ctx, ids, "")
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[string]*model.Tool, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}
	// 保持索引给出的相关度顺序，跳过索引中残留的已删除工具
	tools := make([]*model.Tool, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			tools = append(tools, t)
		}
	}
	return tools, total, nil
}

// UpdateTool 在同一事务内读取、合并、重算分数并写回
func (s *Service) UpdateTool(ctx context.Context, id string, req *UpdateToolRequest) (*model.Tool, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidTool)
	}
	if err := validateSchemas(req.InputSchema, req.OutputSchema); err != nil {
		return nil, err
	}

	var updated *model.Tool
	err := s.repo.Transaction(ctx, func(tx *repository.Repositories) error {
		current, err := tx.Tool.GetByIDForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(err)
		}

		merged, _ := MergeUpdate(current, req)
		if merged.Name != current.Name {
			if other, err := tx.Tool.GetByName(ctx, merged.Name); err == nil && other.ID != id {
				return ErrToolNameExists
			} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}
		merged.UpdatedAt = s.now()
		if err := tx.Tool.Update(ctx, merged); err != nil {
			return err
		}

		if merged.Category != current.Category {
			if current.Category != "" {
				if err := tx.Category.Decrement(ctx, current.Category); err != nil {
					return err
				}
			}
			if merged.Category != "" {
				if err := tx.Category.Increment(ctx, merged.Category, strings.TrimSpace(*req.Category)); err != nil {
					return err
				}
			}
		}
		updated = merged
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrToolNotFound), errors.Is(err, ErrToolNameExists):
			return nil, err
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrToolNameExists
		}
		return nil, fmt.Errorf("failed to update tool: %w", err)
	}

	s.metrics.IncScore(updated.Grade)
	s.index(ctx, updated)
	return updated, nil
}

// DeleteTool 删除工具及其使用记录
func (s *Service) DeleteTool(ctx context.Context, id string) error {
	err := s.repo.Transaction(ctx, func(tx *repository.Repositories) error {
		tool, err := tx.Tool.GetByIDForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(err)
		}
		if err := tx.Usage.DeleteByToolID(ctx, id); err != nil {
			return err
		}
		if err := tx.Tool.Delete(ctx, id); err != nil {
			return mapNotFound(err)
		}
		if tool.Category != "" {
			return tx.Category.Decrement(ctx, tool.Category)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrToolNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete tool: %w", err)
	}

	if err := s.indexer.Delete(ctx, id); err != nil {
		s.log.Warn("failed to remove tool from search index", "id", id, "error", err)
	}
	s.log.Info("tool deleted", "id", id)
	return nil
}

// RecordUsage 追加使用事件并累加计数，download 额外累加下载数
func (s *Service) RecordUsage(ctx context.Context, id string, action model.UsageAction) (*model.UsageEvent, error) {
	if action == "" {
		action = model.UsageActionUse
	}
	if !action.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	var downloads int64
	if action == model.UsageActionDownload {
		downloads = 1
	}
	evt := &model.UsageEvent{
		ID:        uuid.New().String(),
		ToolID:    id,
		Action:    action,
		CreatedAt: s.now(),
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Tool.IncrementCounters(ctx, id, 1, downloads); err != nil {
			return mapNotFound(err)
		}
		return tx.Usage.Create(ctx, evt)
	})
	if err != nil {
		if errors.Is(err, ErrToolNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to record usage: %w", err)
	}

	s.metrics.IncUsage(string(action))
	return evt, nil
}

// Reindex 将全部工具重新写入搜索索引
func (s *Service) Reindex(ctx context.Context) (int, error) {
	if !s.indexer.Enabled() {
		return 0, nil
	}

	const batch = 100
	indexed := 0
	for offset := 0; ; offset += batch {
		tools, _, err := s.repo.Tool.List(ctx, repository.ToolFilter{}, offset, batch)
		if err != nil {
			return indexed, fmt.Errorf("failed to list tools: %w", err)
		}
		for _, t := range tools {
			if err := s.indexer.Index(ctx, search.NewDocument(t)); err != nil {
				return indexed, err
			}
			indexed++
		}
		if len(tools) < batch {
			return indexed, nil
		}
	}
}

// index 索引失败不影响写入结果
func (s *Service) index(ctx context.Context, tool *model.Tool) {
	if err := s.indexer.Index(ctx, search.NewDocument(tool)); err != nil {
		s.log.Warn("failed to index tool", "id", tool.ID, "error", err)
	}
}

func validateSchemas(docs ...[]byte) error {
	for _, doc := range docs {
		if err := schema.Validate(doc); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSchema, err)
		}
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrToolNotFound
	}
	return err
}
