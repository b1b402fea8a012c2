package cards

import (
	"context"
	"fmt"
	"time"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/ports"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/repository"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/serial"
)

// GenerateUseCase batch-creates card records in status REQUESTED. Serial
// ranges are strictly sequential per product+year: the new range must start
// right after the highest suffix already allocated.
type GenerateUseCase struct {
	txRunner ports.TxRunner
	products repository.ProductRepository
	activity ports.ActivityLog
}

// NewGenerateUseCase builds the use case.
func NewGenerateUseCase(txRunner ports.TxRunner, products repository.ProductRepository, activity ports.ActivityLog) *GenerateUseCase {
	return &GenerateUseCase{txRunner: txRunner, products: products, activity: activity}
}

// GenerateInput suffix fields accept bare suffixes or full serials.
type GenerateInput struct {
	ProductID   string
	StartSuffix string
	EndSuffix   string
	At          time.Time
	Actor       string
}

// GenerateResult the allocated range.
type GenerateResult struct {
	FirstSerial string
	LastSerial  string
	Count       int
}

// Execute allocates the range. The sequential-continuation check and the
// inserts run in one transaction so two concurrent generations cannot both
// start at the same suffix: the loser hits the unique serial constraint and
// rolls back.
func (uc *GenerateUseCase) Execute(ctx context.Context, input GenerateInput) (*GenerateResult, error) {
	product, err := uc.products.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFoundf("product %s not found", input.ProductID)
	}

	at := input.At
	if at.IsZero() {
		at = time.Now()
	}
	year := serial.YearSuffix(at)

	start, err := serial.ParseSuffix(input.StartSuffix, product.SerialTemplate, year)
	if err != nil {
		return nil, err
	}
	end, err := serial.ParseSuffix(input.EndSuffix, product.SerialTemplate, year)
	if err != nil {
		return nil, err
	}
	serials, err := serial.Range(product.SerialTemplate, year, start, end, serial.GenerateBatchCap)
	if err != nil {
		return nil, err
	}

	err = uc.txRunner.Run(ctx, func(r ports.Repos) error {
		prefix := serial.Prefix(product.SerialTemplate, year)
		highest, exists, err := r.Cards.MaxSuffix(ctx, product.ID, prefix)
		if err != nil {
			return err
		}
		if err := serial.CheckSequential(start, highest, exists); err != nil {
			return err
		}

		batch := make([]*entity.Card, 0, len(serials))
		for _, s := range serials {
			c := &entity.Card{
				ProductID:    product.ID,
				SerialNumber: s,
				Status:       entity.CardStatusRequested,
				CreatedAt:    at,
				UpdatedAt:    at,
				UpdatedBy:    input.Actor,
			}
			if err := c.ValidateState(); err != nil {
				return err
			}
			batch = append(batch, c)
		}
		return r.Cards.CreateBatch(ctx, batch)
	})
	if err != nil {
		return nil, err
	}

	uc.activity.Record(ctx, input.Actor, "cards_generate",
		fmt.Sprintf("product %s: generated %s..%s (%d cards)",
			product.ID, serials[0], serials[len(serials)-1], len(serials)))

	return &GenerateResult{
		FirstSerial: serials[0],
		LastSerial:  serials[len(serials)-1],
		Count:       len(serials),
	}, nil
}
