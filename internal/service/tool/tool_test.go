package tool

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/tool-catalog/internal/database"
	"github.com/ashwinyue/tool-catalog/internal/model"
	"github.com/ashwinyue/tool-catalog/internal/repository"
	"github.com/ashwinyue/tool-catalog/internal/scoring"
	"github.com/ashwinyue/tool-catalog/internal/service/search"
)

// recordingIndexer 记录索引调用，可模拟检索失败
type recordingIndexer struct {
	mu        sync.Mutex
	docs      map[string]search.Document
	deleted   []string
	searchIDs []string
	searchErr error
}

func newRecordingIndexer() *recordingIndexer {
	return &recordingIndexer{docs: map[string]search.Document{}}
}

func (r *recordingIndexer) Enabled() bool { return true }

func (r *recordingIndexer) Index(ctx context.Context, doc search.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = doc
	return nil
}

func (r *recordingIndexer) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *recordingIndexer) Search(ctx context.Context, q search.Query) ([]string, int64, error) {
	if r.searchErr != nil {
		return nil, 0, r.searchErr
	}
	return r.searchIDs, int64(len(r.searchIDs)), nil
}

func newTestService(t *testing.T, indexer search.Indexer) (*Service, *repository.Repositories) {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repos := repository.NewRepositories(db.DB)
	return NewService(repos, indexer, nil, nil), repos
}

func decodeCreate(t *testing.T, body string) *CreateToolRequest {
	t.Helper()
	var req CreateToolRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return &req
}

func decodeUpdate(t *testing.T, body string) *UpdateToolRequest {
	t.Helper()
	var req UpdateToolRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return &req
}

func TestCreateToolRequest_FlatFlags(t *testing.T) {
	req := decodeCreate(t, `{"name":"swap","validated":true,"hasTools":"yes","hasReadme":true,"tags":["A"]}`)

	assert.Equal(t, "swap", req.Name)
	assert.Equal(t, []string{"A"}, req.Tags)
	assert.True(t, req.Flags.Validated)
	assert.False(t, req.Flags.HasTools, "non-boolean flag values coerce to false")
	assert.True(t, req.Flags.HasReadme)
}

func TestUpdateToolRequest_OnlyPresentFlagsPatched(t *testing.T) {
	req := decodeUpdate(t, `{"description":"new","hasLicense":false}`)

	require.NotNil(t, req.Description)
	assert.Nil(t, req.Name)
	require.NotNil(t, req.Flags.HasLicense)
	assert.False(t, *req.Flags.HasLicense)
	assert.Nil(t, req.Flags.Validated)
}

func TestMergeUpdate(t *testing.T) {
	current := &model.Tool{ID: "t1", Name: "swap", Category: "defi", Description: "old",
		Tags: model.NormalizeSet([]string{"dex"})}
	current.SetQualityFlags(scoring.Flags{Validated: true, HasTools: true, HasDeployment: true, HasReadme: true})
	require.Equal(t, "b", current.Grade)

	tests := []struct {
		name      string
		req       *UpdateToolRequest
		wantGrade scoring.Grade
		wantScore int
		check     func(t *testing.T, merged *model.Tool)
	}{
		{
			name:      "no changes keeps score",
			req:       &UpdateToolRequest{},
			wantGrade: scoring.GradeB,
			wantScore: 60,
			check: func(t *testing.T, merged *model.Tool) {
				assert.Equal(t, "old", merged.Description)
				assert.Equal(t, []string{"dex"}, []string(merged.Tags))
			},
		},
		{
			name:      "adding optional flags raises grade",
			req:       &UpdateToolRequest{Flags: scoring.FlagsPatch{HasDeployMoreThanManual: scoring.Bool(true), HasLicense: scoring.Bool(true)}},
			wantGrade: scoring.GradeA,
			wantScore: 80,
		},
		{
			name:      "dropping a required flag forces f",
			req:       &UpdateToolRequest{Flags: scoring.FlagsPatch{HasReadme: scoring.Bool(false)}},
			wantGrade: scoring.GradeF,
			wantScore: 50,
			check: func(t *testing.T, merged *model.Tool) {
				assert.False(t, merged.HasReadme)
				assert.True(t, merged.Validated)
			},
		},
		{
			name:      "plain fields and sets",
			req:       &UpdateToolRequest{Description: strPtr(" new "), Category: strPtr("Data & AI"), Tags: &[]string{"B", "a", "b"}},
			wantGrade: scoring.GradeB,
			wantScore: 60,
			check: func(t *testing.T, merged *model.Tool) {
				assert.Equal(t, "new", merged.Description)
				assert.Equal(t, "data-ai", merged.Category)
				assert.Equal(t, []string{"a", "b"}, []string(merged.Tags))
			},
		},
		{
			name:      "null schema clears",
			req:       &UpdateToolRequest{InputSchema: json.RawMessage(`null`)},
			wantGrade: scoring.GradeB,
			wantScore: 60,
			check: func(t *testing.T, merged *model.Tool) {
				assert.Nil(t, merged.InputSchema)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, res := MergeUpdate(current, tt.req)
			assert.Equal(t, tt.wantGrade, res.Grade)
			assert.Equal(t, tt.wantScore, merged.TotalScore)
			assert.Equal(t, string(tt.wantGrade), merged.Grade)
			if tt.check != nil {
				tt.check(t, merged)
			}
			// current 不被修改
			assert.Equal(t, "old", current.Description)
			assert.Equal(t, 60, current.TotalScore)
		})
	}
}

func TestService_CreateTool(t *testing.T) {
	ctx := context.Background()
	indexer := newRecordingIndexer()
	svc, repos := newTestService(t, indexer)

	req := decodeCreate(t, `{
		"name": " Bridge Scanner ",
		"category": "Bridges",
		"chains": ["EVM", "evm", "Solana"],
		"inputSchema": {"type": "object", "properties": {"chain": {"type": "string"}}},
		"validated": true, "hasTools": true, "hasDeployment": true, "hasReadme": true,
		"hasDeployMoreThanManual": true, "hasPrompts": true
	}`)

	tool, err := svc.CreateTool(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Bridge Scanner", tool.Name)
	assert.Equal(t, "bridges", tool.Category)
	assert.Equal(t, []string{"evm", "solana"}, []string(tool.Chains))
	assert.Equal(t, 80, tool.TotalScore)
	assert.Equal(t, "a", tool.Grade)
	assert.Contains(t, indexer.docs, tool.ID)

	category, err := repos.Category.GetBySlug(ctx, "bridges")
	require.NoError(t, err)
	assert.Equal(t, "Bridges", category.Name)
	assert.EqualValues(t, 1, category.ToolCount)

	_, err = svc.CreateTool(ctx, &CreateToolRequest{Name: "Bridge Scanner"})
	assert.ErrorIs(t, err, ErrToolNameExists)
}

func TestService_CreateToolValidation(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.CreateTool(context.Background(), &CreateToolRequest{Name: "  "})
	assert.ErrorIs(t, err, ErrInvalidTool)

	_, err = svc.CreateTool(context.Background(), &CreateToolRequest{
		Name:        "bad-schema",
		InputSchema: json.RawMessage(`[1, 2]`),
	})
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestService_UpdateToolRecomputesAndMovesCategory(t *testing.T) {
	ctx := context.Background()
	indexer := newRecordingIndexer()
	svc, repos := newTestService(t, indexer)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return fixed })

	tool, err := svc.CreateTool(ctx, &CreateToolRequest{
		Name:     "gas-oracle",
		Category: "defi",
		Flags:    scoring.Flags{Validated: true, HasTools: true, HasDeployment: true, HasReadme: true},
	})
	require.NoError(t, err)
	require.Equal(t, "b", tool.Grade)

	updated, err := svc.UpdateTool(ctx, tool.ID, decodeUpdate(t, `{"category":"Oracles","hasReadme":false}`))
	require.NoError(t, err)
	assert.Equal(t, "f", updated.Grade)
	assert.Equal(t, 50, updated.TotalScore)
	assert.Equal(t, "oracles", updated.Category)

	stored, err := repos.Tool.GetByID(ctx, tool.ID)
	require.NoError(t, err)
	assert.Equal(t, "f", stored.Grade)
	assert.False(t, stored.HasReadme)
	assert.True(t, stored.Validated)

	defi, err := repos.Category.GetBySlug(ctx, "defi")
	require.NoError(t, err)
	assert.Zero(t, defi.ToolCount)
	oracles, err := repos.Category.GetBySlug(ctx, "oracles")
	require.NoError(t, err)
	assert.EqualValues(t, 1, oracles.ToolCount)

	assert.Equal(t, "f", indexer.docs[tool.ID].Grade)
}

func TestService_UpdateToolErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	_, err := svc.UpdateTool(ctx, "missing", &UpdateToolRequest{})
	assert.ErrorIs(t, err, ErrToolNotFound)

	a, err := svc.CreateTool(ctx, &CreateToolRequest{Name: "a"})
	require.NoError(t, err)
	_, err = svc.CreateTool(ctx, &CreateToolRequest{Name: "b"})
	require.NoError(t, err)

	_, err = svc.UpdateTool(ctx, a.ID, &UpdateToolRequest{Name: strPtr("b")})
	assert.ErrorIs(t, err, ErrToolNameExists)

	_, err = svc.UpdateTool(ctx, a.ID, &UpdateToolRequest{Name: strPtr(" ")})
	assert.ErrorIs(t, err, ErrInvalidTool)
}

func TestService_RecordUsage(t *testing.T) {
	ctx := context.Background()
	svc, repos := newTestService(t, nil)

	tool, err := svc.CreateTool(ctx, &CreateToolRequest{Name: "minter"})
	require.NoError(t, err)

	for _, action := range []model.UsageAction{"", model.UsageActionDownload, model.UsageActionView} {
		_, err := svc.RecordUsage(ctx, tool.ID, action)
		require.NoError(t, err)
	}

	stored, err := repos.Tool.GetByID(ctx, tool.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stored.UsageCount)
	assert.EqualValues(t, 1, stored.DownloadCount)

	usage, err := repos.Usage.CountSince(ctx, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, usage[tool.ID])

	_, err = svc.RecordUsage(ctx, tool.ID, "share")
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = svc.RecordUsage(ctx, "missing", model.UsageActionUse)
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestService_DeleteTool(t *testing.T) {
	ctx := context.Background()
	indexer := newRecordingIndexer()
	svc, repos := newTestService(t, indexer)

	tool, err := svc.CreateTool(ctx, &CreateToolRequest{Name: "doomed", Category: "nft"})
	require.NoError(t, err)
	_, err = svc.RecordUsage(ctx, tool.ID, model.UsageActionUse)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTool(ctx, tool.ID))
	assert.Equal(t, []string{tool.ID}, indexer.deleted)

	_, err = svc.GetTool(ctx, tool.ID)
	assert.ErrorIs(t, err, ErrToolNotFound)

	total, err := repos.Usage.CountAllSince(ctx, time.Time{})
	require.NoError(t, err)
	assert.Zero(t, total)

	nft, err := repos.Category.GetBySlug(ctx, "nft")
	require.NoError(t, err)
	assert.Zero(t, nft.ToolCount)

	assert.ErrorIs(t, svc.DeleteTool(ctx, tool.ID), ErrToolNotFound)
}

func TestService_GetScore(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	tool, err := svc.CreateTool(ctx, &CreateToolRequest{
		Name:  "scored",
		Flags: scoring.Flags{Validated: true, HasTools: true, HasDeployment: true},
	})
	require.NoError(t, err)

	score, err := svc.GetScore(ctx, tool.ID)
	require.NoError(t, err)
	assert.Equal(t, tool.ID, score.ToolID)
	assert.Equal(t, scoring.GradeF, score.Grade)
	assert.Equal(t, 50, score.TotalScore)
	assert.Equal(t, 83, score.RequiredPercentage)
}

func TestService_SearchTools(t *testing.T) {
	ctx := context.Background()
	indexer := newRecordingIndexer()
	svc, _ := newTestService(t, indexer)

	a, err := svc.CreateTool(ctx, &CreateToolRequest{Name: "alpha", Description: "bridge relayer"})
	require.NoError(t, err)
	b, err := svc.CreateTool(ctx, &CreateToolRequest{Name: "beta"})
	require.NoError(t, err)

	t.Run("index order preserved and stale ids skipped", func(t *testing.T) {
		indexer.searchIDs = []string{b.ID, "stale", a.ID}
		tools, total, err := svc.SearchTools(ctx, &SearchToolsRequest{Query: "anything"})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		require.Len(t, tools, 2)
		assert.Equal(t, b.ID, tools[0].ID)
		assert.Equal(t, a.ID, tools[1].ID)
	})

	t.Run("falls back to database when index fails", func(t *testing.T) {
		indexer.searchErr = errors.New("es down")
		tools, total, err := svc.SearchTools(ctx, &SearchToolsRequest{Query: "relayer"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, tools, 1)
		assert.Equal(t, a.ID, tools[0].ID)
	})
}

func TestService_Reindex(t *testing.T) {
	ctx := context.Background()
	indexer := newRecordingIndexer()
	svc, _ := newTestService(t, indexer)

	for _, name := range []string{"one", "two", "three"} {
		_, err := svc.CreateTool(ctx, &CreateToolRequest{Name: name})
		require.NoError(t, err)
	}
	indexer.docs = map[string]search.Document{}

	n, err := svc.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, indexer.docs, 3)
}

func strPtr(s string) *string {
	return &s
}
