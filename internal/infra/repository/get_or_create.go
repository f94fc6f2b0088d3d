package repository

import (
	repo "ecshop/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// whereで探し、無ければ ON CONFLICT DO NOTHING で作って探し直す。
// 一意制約があれば同時実行でも重複しない。戻り値は作ったかどうか
func getOrCreate[T any](db *gorm.DB, out *T, create T, where string, args ...any) (bool, error) {
	res := db.Where(where, args...).Limit(1).Find(out)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return false, nil
	}

	ins := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&create)
	if ins.Error != nil {
		return false, ins.Error
	}
	if ins.RowsAffected == 1 {
		*out = create
		return true, nil
	}

	//他のトランザクションが先に作った
	res = db.Where(where, args...).Limit(1).Find(out)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, repo.ErrNotFound
	}
	return false, nil
}
