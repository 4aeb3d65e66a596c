package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind classifies a billable service for downstream routing: lab orders go
// to the LIS, imaging to the RIS, everything else only to the ledger.
type Kind string

const (
	KindLab       Kind = "lab"
	KindImaging   Kind = "imaging"
	KindProcedure Kind = "procedure"
	KindOther     Kind = "other"
)

// Raw category labels as entered on the service master screens. The kind is
// resolved once, when the catalog row is written, so billing never does
// string matching.
var kindPrefixes = []struct {
	prefix string
	kind   Kind
}{
	{"Xét nghiệm", KindLab},
	{"Chẩn đoán hình ảnh", KindImaging},
	{"Thủ thuật", KindProcedure},
}

// ResolveKind maps a raw category label to its Kind.
func ResolveKind(rawCategory string) Kind {
	for _, p := range kindPrefixes {
		if strings.HasPrefix(rawCategory, p.prefix) {
			return p.kind
		}
	}
	return KindOther
}

// ServiceItem is a billable service in the hospital's service master.
type ServiceItem struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	Code      string          `db:"code" json:"code"`
	Name      string          `db:"name" json:"name"`
	Category  string          `db:"category" json:"category"`
	Kind      Kind            `db:"kind" json:"kind"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Active    bool            `db:"active" json:"active"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Medication is a pharmacy stock item.
type Medication struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	Code       string          `db:"code" json:"code"`
	Name       string          `db:"name" json:"name"`
	Unit       string          `db:"unit" json:"unit"`
	Cost       decimal.Decimal `db:"cost" json:"cost"`
	Stock      int             `db:"stock" json:"stock"`
	ExpiryDate *time.Time      `db:"expiry_date" json:"expiry_date,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}
