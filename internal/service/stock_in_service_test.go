package service

import (
	"testing"
	"time"

	"github.com/candat96/mini-cis/internal/apperr"
	"github.com/candat96/mini-cis/internal/model/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockInCreatesBatchInventory(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)
	medicine := createTestMedicine(t, svcs, "Amoxicillin", 12)

	expiry := daysFromNow(180)
	doc, err := svcs.StockIn.Create(CreateStockInRequest{
		Supplier: "ACME Pharma",
		Details: []StockInDetailRequest{{
			MedicineID:  medicine.ID,
			Quantity:    100,
			UnitPrice:   decimal.NewFromInt(6),
			ExpiryDate:  expiry,
			BatchNumber: "LOT-A",
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "NK0001", doc.Code)
	assert.True(t, doc.TotalAmount.Equal(decimal.NewFromInt(600)))

	var inv entity.Inventory
	require.NoError(t, db.Where("medicine_id = ? AND batch_number = ?", medicine.ID, "LOT-A").First(&inv).Error)
	assert.Equal(t, 100, inv.Quantity)
	assert.True(t, inv.AverageCost.Equal(decimal.NewFromInt(6)))
}

func TestStockInWeightedAverageCost(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)
	medicine := createTestMedicine(t, svcs, "Ibuprofen", 8)

	stockInMedicine(t, svcs, medicine.ID, "LOT-A", 100, 10, nil)
	stockInMedicine(t, svcs, medicine.ID, "LOT-A", 50, 16, nil)

	var inv entity.Inventory
	require.NoError(t, db.Where("medicine_id = ? AND batch_number = ?", medicine.ID, "LOT-A").First(&inv).Error)
	assert.Equal(t, 150, inv.Quantity)
	// (100*10 + 50*16) / 150 = 12
	assert.True(t, inv.AverageCost.Equal(decimal.NewFromInt(12)), "got %s", inv.AverageCost)
}

func TestStockInSameBatchKeepsLaterExpiry(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)
	medicine := createTestMedicine(t, svcs, "Cetirizine", 4)

	early := daysFromNow(30)
	late := daysFromNow(90)
	stockInMedicine(t, svcs, medicine.ID, "LOT-A", 10, 2, late)
	stockInMedicine(t, svcs, medicine.ID, "LOT-A", 10, 2, early)

	var inv entity.Inventory
	require.NoError(t, db.Where("medicine_id = ? AND batch_number = ?", medicine.ID, "LOT-A").First(&inv).Error)
	require.NotNil(t, inv.ExpiryDate)
	assert.WithinDuration(t, *late, *inv.ExpiryDate, time.Second)
}

func TestStockInExplicitCodeConflict(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)
	medicine := createTestMedicine(t, svcs, "Aspirin", 3)

	req := CreateStockInRequest{
		Code: "NK0042",
		Details: []StockInDetailRequest{{
			MedicineID: medicine.ID,
			Quantity:   5,
			UnitPrice:  decimal.NewFromInt(1),
		}},
	}
	_, err := svcs.StockIn.Create(req)
	require.NoError(t, err)

	_, err = svcs.StockIn.Create(req)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestStockInUnknownMedicineRollsBack(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)
	medicine := createTestMedicine(t, svcs, "Vitamin C", 2)

	_, err := svcs.StockIn.Create(CreateStockInRequest{
		Details: []StockInDetailRequest{
			{MedicineID: medicine.ID, Quantity: 10, UnitPrice: decimal.NewFromInt(1)},
			{MedicineID: "missing-id", Quantity: 10, UnitPrice: decimal.NewFromInt(1)},
		},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	// 整单回滚，第一行也不应入库
	assert.Equal(t, 0, totalStock(t, db, medicine.ID))
	var count int64
	require.NoError(t, db.Model(&entity.StockIn{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestStockInDeleteKeepsInventory(t *testing.T) {
	db := setupTestDB(t)
	svcs := newTestServices(t, db)
	medicine := createTestMedicine(t, svcs, "Zinc", 2)

	doc, err := svcs.StockIn.Create(CreateStockInRequest{
		Details: []StockInDetailRequest{{
			MedicineID: medicine.ID,
			Quantity:   30,
			UnitPrice:  decimal.NewFromInt(1),
		}},
	})
	require.NoError(t, err)

	require.NoError(t, svcs.StockIn.Delete(doc.ID))
	_, err = svcs.StockIn.Get(doc.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.Equal(t, 30, totalStock(t, db, medicine.ID))
}
