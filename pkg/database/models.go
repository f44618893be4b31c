package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product categories.
const (
	CategoryTamal    = "tamal"
	CategoryBeverage = "beverage"
)

// Attribute kinds. Tamales are configured by masa, relleno, envoltura and
// picante; beverages by tipo_bebida, endulzante and topping.
const (
	AttrMasa       = "masa"
	AttrRelleno    = "relleno"
	AttrEnvoltura  = "envoltura"
	AttrPicante    = "picante"
	AttrTipoBebida = "tipo_bebida"
	AttrEndulzante = "endulzante"
	AttrTopping    = "topping"
)

// Combo kinds.
const (
	ComboRegular     = "regular"
	ComboSeasonal    = "seasonal"
	ComboPromotional = "promotional"
)

// Sale statuses.
const (
	SalePending   = "pending"
	SaleCompleted = "completed"
	SaleCancelled = "cancelled"
)

// Inventory movement kinds.
const (
	MovementInbound  = "inbound"
	MovementOutbound = "outbound"
	MovementWaste    = "waste"
)

// User roles.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleSeller  = "seller"
)

// BaseModel is embedded by every entity. IDs are assigned in BeforeCreate
// so the same models work against Postgres and the in-memory test driver.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Branch represents a store location (sucursal).
type Branch struct {
	BaseModel
	Name     string `gorm:"not null" json:"name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

// User represents a system user. PasswordHash is empty for OAuth-only users.
type User struct {
	BaseModel
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `json:"-"`
	GoogleID     string    `gorm:"index" json:"-"`
	Role         string    `gorm:"default:'seller'" json:"role"` // admin, manager, seller
	BranchID     uuid.UUID `gorm:"type:uuid;not null" json:"branch_id"`
	Branch       Branch    `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
}

// Product is a sellable item. Products are never hard-deleted because
// historical sale lines reference them; deactivation is the only removal.
type Product struct {
	BaseModel
	Name      string  `gorm:"not null" json:"name"`
	Category  string  `gorm:"not null" json:"category"` // tamal, beverage
	BasePrice float64 `gorm:"not null" json:"base_price"`
	IsActive  bool    `gorm:"default:true" json:"is_active"`
}

// Attribute is a configurable option in one of the kinded catalogs
// (masa, relleno, envoltura, picante, tipo_bebida, endulzante, topping).
type Attribute struct {
	BaseModel
	Kind     string `gorm:"not null;index" json:"kind"`
	Name     string `gorm:"not null" json:"name"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

// Combo is a bundle of products sold at a single price. Seasonal combos are
// edited in place through the API, no redeploy involved.
type Combo struct {
	BaseModel
	Name        string      `gorm:"not null" json:"name"`
	Code        string      `gorm:"uniqueIndex;not null" json:"code"`
	Kind        string      `gorm:"not null" json:"kind"` // regular, seasonal, promotional
	Price       float64     `gorm:"not null" json:"price"`
	Description string      `json:"description"`
	Editable    bool        `gorm:"default:false" json:"editable"`
	ValidFrom   *time.Time  `json:"valid_from"`
	ValidUntil  *time.Time  `json:"valid_until"`
	IsActive    bool        `gorm:"default:true" json:"is_active"`
	Lines       []ComboLine `gorm:"foreignKey:ComboID;constraint:OnDelete:CASCADE" json:"lines"`
}

// CurrentlyOffered reports whether the combo can be sold right now:
// active and, when a validity window is set, now falls inside it.
func (co Combo) CurrentlyOffered(now time.Time) bool {
	if !co.IsActive {
		return false
	}
	if co.ValidFrom != nil && now.Before(*co.ValidFrom) {
		return false
	}
	if co.ValidUntil != nil && now.After(*co.ValidUntil) {
		return false
	}
	return true
}

// ComboLine is one product entry inside a combo.
type ComboLine struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ComboID   uuid.UUID `gorm:"type:uuid;not null;index" json:"combo_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	Product   Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Config    string    `gorm:"type:text" json:"config,omitempty"`
}

func (cl *ComboLine) BeforeCreate(tx *gorm.DB) error {
	if cl.ID == uuid.Nil {
		cl.ID = uuid.New()
	}
	return nil
}

// Sale is a point-of-sale transaction header. It exclusively owns its lines.
type Sale struct {
	BaseModel
	OrderNumber string     `gorm:"uniqueIndex;not null" json:"order_number"`
	BranchID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"branch_id"`
	Branch      Branch     `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	User        User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Subtotal    float64    `gorm:"not null" json:"subtotal"`
	Discount    float64    `gorm:"default:0" json:"discount"`
	Total       float64    `gorm:"not null" json:"total"`
	Status      string     `gorm:"default:'completed';index" json:"status"` // pending, completed, cancelled
	IsSynced    bool       `gorm:"default:true" json:"is_synced"`           // offline-first POS devices
	SoldAt      time.Time  `gorm:"index" json:"sold_at"`
	Lines       []SaleLine `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"lines"`
}

// SaleLine references exactly one of ProductID or ComboID. The check
// constraint backs up the handler-level validation.
type SaleLine struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	SaleID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID *uuid.UUID `gorm:"type:uuid;check:chk_line_target,(product_id IS NULL) <> (combo_id IS NULL)" json:"product_id"`
	Product   *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	ComboID   *uuid.UUID `gorm:"type:uuid" json:"combo_id"`
	Combo     *Combo     `gorm:"foreignKey:ComboID" json:"combo,omitempty"`
	Quantity  int        `gorm:"not null" json:"quantity"`
	UnitPrice float64    `gorm:"not null" json:"unit_price"`
	Subtotal  float64    `gorm:"not null" json:"subtotal"`
	Config    string     `gorm:"type:text" json:"config,omitempty"` // selected attributes as opaque JSON
}

func (sl *SaleLine) BeforeCreate(tx *gorm.DB) error {
	if sl.ID == uuid.Nil {
		sl.ID = uuid.New()
	}
	return nil
}

// RawMaterial is an inventory item consumed by recipes. CriticalPoint is
// recomputed after every movement as CurrentStock <= MinStock.
type RawMaterial struct {
	BaseModel
	Name          string  `gorm:"not null" json:"name"`
	Category      string  `json:"category"`
	Unit          string  `gorm:"not null" json:"unit"` // lb, oz, unidad, litro...
	CurrentStock  float64 `gorm:"default:0" json:"current_stock"`
	MinStock      float64 `gorm:"default:0" json:"min_stock"`
	AvgCost       float64 `gorm:"default:0" json:"avg_cost"`
	CriticalPoint bool    `gorm:"default:false" json:"critical_point"`
}

// InventoryMovement is an append-only ledger entry. Movements are never
// edited or deleted; CurrentStock is kept in sync with their signed sum.
type InventoryMovement struct {
	ID            uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	RawMaterialID uuid.UUID   `gorm:"type:uuid;not null;index" json:"raw_material_id"`
	RawMaterial   RawMaterial `gorm:"foreignKey:RawMaterialID;constraint:OnDelete:CASCADE" json:"raw_material,omitempty"`
	Kind          string      `gorm:"not null" json:"kind"` // inbound, outbound, waste
	Quantity      float64     `gorm:"not null" json:"quantity"`
	UnitCost      float64     `gorm:"default:0" json:"unit_cost"`
	TotalCost     float64     `gorm:"default:0" json:"total_cost"`
	Reason        string      `json:"reason"`
	UserID        uuid.UUID   `gorm:"type:uuid;not null" json:"user_id"`
	CreatedAt     time.Time   `gorm:"index" json:"created_at"`
}

func (m *InventoryMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Recipe maps one raw material requirement of a product, per unit sold.
type Recipe struct {
	ID            uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	ProductID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"product_id"`
	Product       Product     `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	RawMaterialID uuid.UUID   `gorm:"type:uuid;not null" json:"raw_material_id"`
	RawMaterial   RawMaterial `gorm:"foreignKey:RawMaterialID" json:"raw_material,omitempty"`
	Quantity      float64     `gorm:"not null" json:"quantity"` // per product unit
	Unit          string      `json:"unit"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ActivityLog tracks user actions for the audit trail.
type ActivityLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	BranchID   *uuid.UUID `gorm:"type:uuid" json:"branch_id"`
	Action     string     `gorm:"not null" json:"action"` // login, sale, stock_adjust, create...
	EntityType string     `json:"entity_type"`
	EntityID   *uuid.UUID `gorm:"type:uuid" json:"entity_id"`
	Details    string     `gorm:"type:text" json:"details"`
	IPAddress  string     `json:"ip_address"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Migrate runs database migrations.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Branch{},
		&User{},
		&Product{},
		&Attribute{},
		&Combo{},
		&ComboLine{},
		&Sale{},
		&SaleLine{},
		&RawMaterial{},
		&InventoryMovement{},
		&Recipe{},
		&ActivityLog{},
	)
}
