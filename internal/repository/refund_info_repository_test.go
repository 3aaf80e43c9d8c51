package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/paybridge-next/internal/constants"
	"github.com/paybridge-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRefundInfoRepositoryTest(t *testing.T) (*GormRefundInfoRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:refund_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.RefundInfo{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewRefundInfoRepository(db), db
}

func TestRefundInfoRepositoryGetByOrderNoLatest(t *testing.T) {
	repo, _ := setupRefundInfoRepositoryTest(t)

	first := models.RefundInfo{
		RefundNo:     "REFUND_20260830100000000001",
		OrderNo:      "ORDER_20260830100000000001",
		TotalFee:     199,
		Refund:       199,
		PaymentType:  constants.PaymentTypeWxPay,
		RefundStatus: constants.RefundStatusAbnormal,
	}
	second := models.RefundInfo{
		RefundNo:     "REFUND_20260830100000000002",
		OrderNo:      "ORDER_20260830100000000001",
		TotalFee:     199,
		Refund:       199,
		PaymentType:  constants.PaymentTypeWxPay,
		RefundStatus: constants.RefundStatusProcessing,
	}
	for _, refund := range []*models.RefundInfo{&first, &second} {
		if err := repo.Create(refund); err != nil {
			t.Fatalf("create refund failed: %v", err)
		}
	}

	got, err := repo.GetByOrderNo("ORDER_20260830100000000001")
	if err != nil {
		t.Fatalf("get refund failed: %v", err)
	}
	if got == nil || got.RefundNo != second.RefundNo {
		t.Fatalf("expected latest refund, got %+v", got)
	}

	got, err = repo.GetByOrderNo("ORDER_20260830999999999999")
	if err != nil {
		t.Fatalf("get missing refund failed: %v", err)
	}
	if got != nil {
		t.Fatalf("missing order should yield nil refund, got %+v", got)
	}
}

func TestRefundInfoRepositoryListProcessingOlderThan(t *testing.T) {
	repo, db := setupRefundInfoRepositoryTest(t)

	stale := models.RefundInfo{RefundNo: "REFUND_20260830100000000011", OrderNo: "ORDER_1", TotalFee: 199, Refund: 199, PaymentType: constants.PaymentTypeAlipay, RefundStatus: constants.RefundStatusProcessing}
	fresh := models.RefundInfo{RefundNo: "REFUND_20260830100000000012", OrderNo: "ORDER_2", TotalFee: 199, Refund: 199, PaymentType: constants.PaymentTypeAlipay, RefundStatus: constants.RefundStatusProcessing}
	done := models.RefundInfo{RefundNo: "REFUND_20260830100000000013", OrderNo: "ORDER_3", TotalFee: 199, Refund: 199, PaymentType: constants.PaymentTypeAlipay, RefundStatus: constants.RefundStatusSuccess}
	for _, refund := range []*models.RefundInfo{&stale, &fresh, &done} {
		if err := repo.Create(refund); err != nil {
			t.Fatalf("create refund failed: %v", err)
		}
	}
	staleAt := time.Now().Add(-10 * time.Minute)
	for _, refundNo := range []string{stale.RefundNo, done.RefundNo} {
		if err := db.Model(&models.RefundInfo{}).
			Where("refund_no = ?", refundNo).
			Update("create_time", staleAt).Error; err != nil {
			t.Fatalf("backdate refund failed: %v", err)
		}
	}

	refunds, err := repo.ListProcessingOlderThan(time.Now().Add(-5*time.Minute), constants.PaymentTypeAlipay)
	if err != nil {
		t.Fatalf("list processing failed: %v", err)
	}
	if len(refunds) != 1 || refunds[0].RefundNo != stale.RefundNo {
		t.Fatalf("expected only the stale processing refund, got %+v", refunds)
	}
}

func TestRefundInfoRepositoryUpdate(t *testing.T) {
	repo, _ := setupRefundInfoRepositoryTest(t)
	refund := models.RefundInfo{
		RefundNo:     "REFUND_20260830100000000021",
		OrderNo:      "ORDER_20260830100000000021",
		TotalFee:     199,
		Refund:       199,
		PaymentType:  constants.PaymentTypeWxPay,
		RefundStatus: constants.RefundStatusProcessing,
	}
	if err := repo.Create(&refund); err != nil {
		t.Fatalf("create refund failed: %v", err)
	}

	refund.RefundStatus = constants.RefundStatusSuccess
	refund.RefundID = "50000000001"
	if err := repo.Update(&refund); err != nil {
		t.Fatalf("update refund failed: %v", err)
	}

	saved, err := repo.GetByRefundNo(refund.RefundNo)
	if err != nil {
		t.Fatalf("get refund failed: %v", err)
	}
	if saved.RefundStatus != constants.RefundStatusSuccess || saved.RefundID != "50000000001" {
		t.Fatalf("unexpected refund row: %+v", saved)
	}
}
