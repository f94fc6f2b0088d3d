package model

import "time"

// 注文ステータス更新、カタログ取込など。
type AuditAction string

const (
	//注文ステータスを更新した操作。
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	//フィードからカタログを取り込んだ操作。
	AuditActionImportCatalog AuditAction = "IMPORT_CATALOG"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceOrder AuditResourceType = "order"
	AuditResourceShop  AuditResourceType = "shop"
)

// 操作ごとの対象。一覧の絞り込みで使う
var auditActionResources = map[AuditAction]AuditResourceType{
	AuditActionUpdateOrderStatus: AuditResourceOrder,
	AuditActionImportCatalog:     AuditResourceShop,
}

// Resource は操作の対象種別。未知の操作ならfalse
func (a AuditAction) Resource() (AuditResourceType, bool) {
	rt, ok := auditActionResources[a]
	return rt, ok
}

func (rt AuditResourceType) Known() bool {
	return rt == AuditResourceOrder || rt == AuditResourceShop
}

// 監査ログ。
// 誰がどの注文・ショップをどう変えたかを残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザーのID。
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index:idx_audit_logs_resource,priority:1" json:"resource_type"`

	ResourceID int64 `gorm:"not null;index:idx_audit_logs_resource,priority:2" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`

	AfterJSON string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
