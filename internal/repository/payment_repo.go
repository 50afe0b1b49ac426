package repository

import (
	"kartify/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByID(id uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByMerchantTransactionID(mtid string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.Where("merchant_transaction_id = ?", mtid).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) Update(p *models.Payment) error {
	return r.db.Save(p).Error
}

// UpdateWithOrder persists a payment and its linked order in one
// transaction, so a callback can never leave the payment SUCCESS while the
// order is still PENDING.
func (r *PaymentRepository) UpdateWithOrder(p *models.Payment, o *models.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		return tx.Save(o).Error
	})
}
