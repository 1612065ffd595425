package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/condoops/incident-service/internal/domain"
	apperrors "github.com/condoops/incident-service/pkg/util"
)

type inventoryFixture struct {
	service   *InventoryService
	products  *mockProductRepo
	movements *mockMovementRepo
	concierge *domain.User
}

func newInventoryFixture(t *testing.T) *inventoryFixture {
	t.Helper()
	products := newMockProductRepo()
	movements := newMockMovementRepo()
	return &inventoryFixture{
		service:   NewInventoryService(products, movements, mockTxManager{}),
		products:  products,
		movements: movements,
		concierge: &domain.User{ID: "con-1", Role: domain.RoleConcierge, BuildingIDs: []string{"b1"}, Active: true},
	}
}

func (f *inventoryFixture) seedProduct(t *testing.T, stock int) *domain.Product {
	t.Helper()
	product, err := f.service.CreateProduct(context.Background(), f.concierge, CreateProductInput{
		BuildingID: "b1",
		Name:       "Ampolleta LED",
		Unit:       "unidad",
		Stock:      stock,
		MinStock:   2,
	})
	require.NoError(t, err)
	return product
}

func TestCreateProduct(t *testing.T) {
	f := newInventoryFixture(t)

	product := f.seedProduct(t, 10)

	assert.NotEmpty(t, product.ID)
	assert.Equal(t, 10, product.Stock)
	assert.Equal(t, "unidad", product.Unit)
}

func TestCreateProductForbiddenForResidents(t *testing.T) {
	f := newInventoryFixture(t)
	resident := &domain.User{ID: "res-1", Role: domain.RoleResident, BuildingIDs: []string{"b1"}, Active: true}

	_, err := f.service.CreateProduct(context.Background(), resident, CreateProductInput{
		BuildingID: "b1",
		Name:       "Ampolleta LED",
	})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestRecordMovementUpdatesStock(t *testing.T) {
	f := newInventoryFixture(t)
	product := f.seedProduct(t, 10)

	movement, err := f.service.RecordMovement(context.Background(), f.concierge, RecordMovementInput{
		ProductID: product.ID,
		Kind:      domain.StockMovementOut,
		Quantity:  4,
		Note:      "Reparación pasillo piso 3",
	})
	require.NoError(t, err)
	assert.Equal(t, f.concierge.ID, movement.ActorID)

	updated, err := f.products.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, updated.Stock)

	_, err = f.service.RecordMovement(context.Background(), f.concierge, RecordMovementInput{
		ProductID: product.ID,
		Kind:      domain.StockMovementIn,
		Quantity:  10,
	})
	require.NoError(t, err)

	updated, err = f.products.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 16, updated.Stock)
}

func TestRecordMovementInsufficientStock(t *testing.T) {
	f := newInventoryFixture(t)
	product := f.seedProduct(t, 3)

	_, err := f.service.RecordMovement(context.Background(), f.concierge, RecordMovementInput{
		ProductID: product.ID,
		Kind:      domain.StockMovementOut,
		Quantity:  5,
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "CONFLICT", domainErr.Code)
	assert.Equal(t, "Ampolleta LED", domainErr.Details["product"])

	// stock untouched
	fresh, err := f.products.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, fresh.Stock)
}

func TestRecordMovementValidation(t *testing.T) {
	f := newInventoryFixture(t)
	product := f.seedProduct(t, 3)

	_, err := f.service.RecordMovement(context.Background(), f.concierge, RecordMovementInput{
		ProductID: product.ID,
		Kind:      "TRASPASO",
		Quantity:  1,
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = f.service.RecordMovement(context.Background(), f.concierge, RecordMovementInput{
		ProductID: product.ID,
		Kind:      domain.StockMovementIn,
		Quantity:  0,
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestRecordMovementCreateFailureLeavesStock(t *testing.T) {
	f := newInventoryFixture(t)
	product := f.seedProduct(t, 10)
	f.movements.failNext = errors.New("insert failed")

	_, err := f.service.RecordMovement(context.Background(), f.concierge, RecordMovementInput{
		ProductID: product.ID,
		Kind:      domain.StockMovementOut,
		Quantity:  2,
	})
	require.Error(t, err)

	fresh, err := f.products.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, fresh.Stock)
}

func TestListMovementsScopedByBuilding(t *testing.T) {
	f := newInventoryFixture(t)
	product := f.seedProduct(t, 10)
	_, err := f.service.RecordMovement(context.Background(), f.concierge, RecordMovementInput{
		ProductID: product.ID,
		Kind:      domain.StockMovementOut,
		Quantity:  1,
	})
	require.NoError(t, err)

	movements, err := f.service.ListMovements(context.Background(), f.concierge, product.ID, 20, 0)
	require.NoError(t, err)
	assert.Len(t, movements, 1)

	outsider := &domain.User{ID: "con-9", Role: domain.RoleConcierge, BuildingIDs: []string{"b2"}, Active: true}
	_, err = f.service.ListMovements(context.Background(), outsider, product.ID, 20, 0)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}
