package mapping

import (
	"github.com/accrualfi/accrual_ledger_app/internal/core/domain"
	"github.com/accrualfi/accrual_ledger_app/internal/models"
)

// ToModelHolder converts a domain.Holder to its DB row representation.
func ToModelHolder(d domain.Holder) models.Holder {
	return models.Holder{
		HolderID:       d.HolderID,
		Principal:      d.Principal,
		Rate:           d.Rate,
		LastCheckpoint: d.LastCheckpoint,
		AuditFields:    toModelAuditFields(d.AuditFields),
	}
}

// ToDomainHolder converts a DB row to a domain.Holder.
func ToDomainHolder(m models.Holder) domain.Holder {
	return domain.Holder{
		HolderID:       m.HolderID,
		Principal:      m.Principal,
		Rate:           m.Rate,
		LastCheckpoint: m.LastCheckpoint,
		AuditFields:    toDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLedgerState converts the global ledger row to its domain form.
func ToDomainLedgerState(m models.LedgerState) domain.LedgerState {
	return domain.LedgerState{
		GlobalRate:     m.GlobalRate,
		TotalPrincipal: m.TotalPrincipal,
		AuditFields:    toDomainAuditFields(m.AuditFields),
	}
}

func toModelAuditFields(d domain.AuditFields) models.AuditFields {
	return models.AuditFields{
		CreatedAt:     d.CreatedAt,
		CreatedBy:     d.CreatedBy,
		LastUpdatedAt: d.LastUpdatedAt,
		LastUpdatedBy: d.LastUpdatedBy,
	}
}

func toDomainAuditFields(m models.AuditFields) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     m.CreatedAt,
		CreatedBy:     m.CreatedBy,
		LastUpdatedAt: m.LastUpdatedAt,
		LastUpdatedBy: m.LastUpdatedBy,
	}
}
