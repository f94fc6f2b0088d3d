package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"ecshop/internal/domain/model"
	infraRepo "ecshop/internal/infra/repository"
	repo "ecshop/internal/repository"
	"ecshop/internal/testutil"
	"ecshop/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuditLogUsecase(t *testing.T) *usecase.AuditLogUsecase {
	t.Helper()
	gdb := testutil.NewDB(t)
	logs := infraRepo.NewAuditLogGormRepository(gdb)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seed := []model.AuditLog{
		{ActorUserID: 1, Action: model.AuditActionImportCatalog, ResourceType: model.AuditResourceShop, ResourceID: 7, CreatedAt: base},
		{ActorUserID: 2, Action: model.AuditActionUpdateOrderStatus, ResourceType: model.AuditResourceOrder, ResourceID: 7, CreatedAt: base.Add(time.Hour)},
		{ActorUserID: 2, Action: model.AuditActionUpdateOrderStatus, ResourceType: model.AuditResourceOrder, ResourceID: 8, CreatedAt: base.Add(2 * time.Hour)},
	}
	for _, l := range seed {
		require.NoError(t, logs.Create(context.Background(), l))
	}
	return usecase.NewAuditLogUsecase(logs)
}

func TestAuditLogUsecase_List(t *testing.T) {
	uc := newAuditLogUsecase(t)
	ctx := context.Background()

	all, err := uc.List(ctx, repo.AuditLogFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// 新しい順
	assert.Equal(t, int64(8), all[0].ResourceID)

	// 注文7とショップ7は別物
	orders, err := uc.List(ctx, repo.AuditLogFilter{ResourceType: model.AuditResourceOrder, ResourceID: 7})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, model.AuditActionUpdateOrderStatus, orders[0].Action)

	// actionから対象種別を補う
	shops, err := uc.List(ctx, repo.AuditLogFilter{Action: model.AuditActionImportCatalog, ResourceID: 7})
	require.NoError(t, err)
	require.Len(t, shops, 1)
	assert.Equal(t, model.AuditResourceShop, shops[0].ResourceType)

	byActor, err := uc.List(ctx, repo.AuditLogFilter{ActorUserID: 2})
	require.NoError(t, err)
	assert.Len(t, byActor, 2)

	since, err := uc.List(ctx, repo.AuditLogFilter{Since: time.Date(2026, 1, 1, 1, 30, 0, 0, time.UTC)})
	require.NoError(t, err)
	require.Len(t, since, 1)
	assert.Equal(t, int64(8), since[0].ResourceID)

	paged, err := uc.List(ctx, repo.AuditLogFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, int64(2), paged[0].ActorUserID)
	assert.Equal(t, model.AuditResourceOrder, paged[0].ResourceType)
}

func TestAuditLogUsecase_ListValidation(t *testing.T) {
	uc := newAuditLogUsecase(t)
	ctx := context.Background()

	cases := map[string]repo.AuditLogFilter{
		"unknown action":           {Action: "DELETE_USER"},
		"unknown resource type":    {ResourceType: "user"},
		"action and type differ":   {Action: model.AuditActionImportCatalog, ResourceType: model.AuditResourceOrder},
		"resource id without type": {ResourceID: 7},
		"negative limit":           {Limit: -1},
		"too large limit":          {Limit: 201},
		"negative offset":          {Offset: -1},
	}
	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.List(ctx, f)
			assertHTTPStatus(t, err, http.StatusBadRequest)
		})
	}
}
