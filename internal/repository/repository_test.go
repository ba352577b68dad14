package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/tool-catalog/internal/database"
	"github.com/ashwinyue/tool-catalog/internal/model"
	"github.com/ashwinyue/tool-catalog/internal/scoring"
)

func newTestRepos(t *testing.T) *Repositories {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepositories(db.DB)
}

func newTool(name, category string, flags scoring.Flags) *model.Tool {
	tool := &model.Tool{
		ID:        uuid.New().String(),
		Name:      name,
		Category:  category,
		Tags:      model.NormalizeSet(nil),
		Chains:    model.NormalizeSet(nil),
		Protocols: model.NormalizeSet(nil),
	}
	tool.SetQualityFlags(flags)
	return tool
}

var (
	flagsA = scoring.Flags{Validated: true, HasTools: true, HasDeployment: true, HasReadme: true, HasDeployMoreThanManual: true, HasPrompts: true}
	flagsB = scoring.Flags{Validated: true, HasTools: true, HasDeployment: true, HasReadme: true}
	flagsF = scoring.Flags{Claimed: true}
)

func TestToolRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	tool := newTool("swap-router", "defi", flagsB)
	tool.Chains = model.NormalizeSet([]string{"EVM", "base"})
	require.NoError(t, repos.Tool.Create(ctx, tool))

	got, err := repos.Tool.GetByID(ctx, tool.ID)
	require.NoError(t, err)
	assert.Equal(t, "swap-router", got.Name)
	assert.Equal(t, 60, got.TotalScore)
	assert.Equal(t, "b", got.Grade)
	assert.Equal(t, []string{"base", "evm"}, []string(got.Chains))

	byName, err := repos.Tool.GetByName(ctx, "swap-router")
	require.NoError(t, err)
	assert.Equal(t, tool.ID, byName.ID)

	got.Description = "routes swaps"
	require.NoError(t, repos.Tool.Update(ctx, got))
	locked, err := repos.Tool.GetByIDForUpdate(ctx, tool.ID)
	require.NoError(t, err)
	assert.Equal(t, "routes swaps", locked.Description)

	require.NoError(t, repos.Tool.Delete(ctx, tool.ID))
	_, err = repos.Tool.GetByID(ctx, tool.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(repos.Tool.Delete(ctx, tool.ID), ErrNotFound))
}

func TestToolRepository_UniqueName(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	require.NoError(t, repos.Tool.Create(ctx, newTool("dup", "defi", flagsF)))
	assert.Error(t, repos.Tool.Create(ctx, newTool("dup", "nft", flagsF)))
}

func TestToolRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	a := newTool("Bridge Scanner", "bridges", flagsA)
	a.Description = "Scans cross-chain bridges"
	a.Chains = model.NormalizeSet([]string{"evm", "solana"})
	a.Protocols = model.NormalizeSet([]string{"mcp"})
	b := newTool("nft-minter", "nft", flagsB)
	b.Chains = model.NormalizeSet([]string{"evm"})
	c := newTool("gas-oracle", "bridges", flagsF)
	c.Tags = model.NormalizeSet([]string{"oracle"})
	for _, tool := range []*model.Tool{a, b, c} {
		require.NoError(t, repos.Tool.Create(ctx, tool))
	}

	tests := []struct {
		name   string
		filter ToolFilter
		want   []string
	}{
		{name: "text matches description", filter: ToolFilter{Query: "CROSS-chain"}, want: []string{a.ID}},
		{name: "category", filter: ToolFilter{Category: "bridges", MinScore: 1}, want: []string{a.ID, c.ID}},
		{name: "chain", filter: ToolFilter{Chain: "EVM", MinScore: 1}, want: []string{a.ID, b.ID}},
		{name: "protocol", filter: ToolFilter{Protocol: "mcp"}, want: []string{a.ID}},
		{name: "tag", filter: ToolFilter{Tag: "oracle"}, want: []string{c.ID}},
		{name: "grade", filter: ToolFilter{Grade: "B"}, want: []string{b.ID}},
		{name: "min score orders by score", filter: ToolFilter{MinScore: 60}, want: []string{a.ID, b.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tools, total, err := repos.Tool.List(ctx, tt.filter, 0, 10)
			require.NoError(t, err)
			assert.EqualValues(t, len(tt.want), total)
			ids := make([]string, 0, len(tools))
			for _, tool := range tools {
				ids = append(ids, tool.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestToolRepository_TopByScoreAndGetByIDs(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	high := newTool("high", "defi", flagsA)
	mid := newTool("mid", "nft", flagsB)
	low := newTool("low", "defi", flagsF)
	for _, tool := range []*model.Tool{high, mid, low} {
		require.NoError(t, repos.Tool.Create(ctx, tool))
	}

	top, err := repos.Tool.TopByScore(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, high.ID, top[0].ID)
	assert.Equal(t, mid.ID, top[1].ID)

	defi, err := repos.Tool.TopByScore(ctx, "defi", 10)
	require.NoError(t, err)
	assert.Len(t, defi, 2)

	byIDs, err := repos.Tool.GetByIDs(ctx, []string{high.ID, mid.ID, "missing"}, "nft")
	require.NoError(t, err)
	require.Len(t, byIDs, 1)
	assert.Equal(t, mid.ID, byIDs[0].ID)

	empty, err := repos.Tool.GetByIDs(ctx, nil, "")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestToolRepository_CountersAndAggregates(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	a := newTool("a", "defi", flagsA)
	b := newTool("b", "defi", flagsF)
	require.NoError(t, repos.Tool.Create(ctx, a))
	require.NoError(t, repos.Tool.Create(ctx, b))

	require.NoError(t, repos.Tool.IncrementCounters(ctx, a.ID, 1, 1))
	require.NoError(t, repos.Tool.IncrementCounters(ctx, a.ID, 1, 0))
	assert.True(t, errors.Is(repos.Tool.IncrementCounters(ctx, "missing", 1, 0), ErrNotFound))

	got, err := repos.Tool.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.UsageCount)
	assert.EqualValues(t, 1, got.DownloadCount)

	total, err := repos.Tool.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	grades, err := repos.Tool.CountByGrade(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"a": 1, "f": 1}, grades)

	categories, err := repos.Tool.CountByCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"defi": 2}, categories)
}

func TestUsageRepository_CountSince(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	a := newTool("a", "defi", flagsB)
	b := newTool("b", "defi", flagsB)
	require.NoError(t, repos.Tool.Create(ctx, a))
	require.NoError(t, repos.Tool.Create(ctx, b))

	now := time.Now().UTC()
	since := now.Add(-24 * time.Hour)
	events := []struct {
		toolID string
		at     time.Time
	}{
		{a.ID, now.Add(-time.Hour)},
		{a.ID, now.Add(-2 * time.Hour)},
		{b.ID, now.Add(-3 * time.Hour)},
		{b.ID, now.Add(-48 * time.Hour)},
	}
	for i, e := range events {
		require.NoError(t, repos.Usage.Create(ctx, &model.UsageEvent{
			ID:        fmt.Sprintf("evt-%d", i),
			ToolID:    e.toolID,
			Action:    model.UsageActionUse,
			CreatedAt: e.at,
		}))
	}

	usage, err := repos.Usage.CountSince(ctx, since)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{a.ID: 2, b.ID: 1}, usage)

	total, err := repos.Usage.CountAllSince(ctx, since)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	none, err := repos.Usage.CountSince(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, repos.Usage.DeleteByToolID(ctx, b.ID))
	usage, err = repos.Usage.CountSince(ctx, now.Add(-72*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{a.ID: 2}, usage)
}

func TestUsageRepository_CascadeOnToolDelete(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	tool := newTool("cascade", "defi", flagsB)
	require.NoError(t, repos.Tool.Create(ctx, tool))
	require.NoError(t, repos.Usage.Create(ctx, &model.UsageEvent{
		ID: uuid.New().String(), ToolID: tool.ID, Action: model.UsageActionView, CreatedAt: time.Now().UTC(),
	}))

	require.NoError(t, repos.Tool.Delete(ctx, tool.ID))

	total, err := repos.Usage.CountAllSince(ctx, time.Time{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCategoryRepository_Counters(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	require.NoError(t, repos.Category.Increment(ctx, "defi", "DeFi"))
	require.NoError(t, repos.Category.Increment(ctx, "defi", "DeFi"))
	require.NoError(t, repos.Category.Increment(ctx, "nft", "NFT"))

	defi, err := repos.Category.GetBySlug(ctx, "defi")
	require.NoError(t, err)
	assert.EqualValues(t, 2, defi.ToolCount)

	require.NoError(t, repos.Category.Decrement(ctx, "nft"))
	require.NoError(t, repos.Category.Decrement(ctx, "nft"))
	nft, err := repos.Category.GetBySlug(ctx, "nft")
	require.NoError(t, err)
	assert.Zero(t, nft.ToolCount)

	list, err := repos.Category.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "defi", list[0].Slug)

	_, err = repos.Category.GetBySlug(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, repos.Category.ReplaceAll(ctx, []*model.Category{{Slug: "tools", Name: "Tools", ToolCount: 7}}))
	count, err := repos.Category.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestRepositories_TransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	boom := errors.New("boom")
	err := repos.Transaction(ctx, func(tx *Repositories) error {
		if err := tx.Tool.Create(ctx, newTool("rolled-back", "defi", flagsB)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repos.Tool.GetByName(ctx, "rolled-back")
	assert.ErrorIs(t, err, ErrNotFound)
}
