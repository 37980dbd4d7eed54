package repository

import "gorm.io/gorm"

// paginate applies offset/limit when pageSize is positive. A zero page size returns every row.
func paginate(query *gorm.DB, page, pageSize int) *gorm.DB {
	if pageSize <= 0 {
		return query
	}
	if page <= 0 {
		page = 1
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}

// countAndFind counts the filtered rows, then loads one page. Scopes such as
// preloads are applied to the page query only.
func countAndFind[T any](query *gorm.DB, order string, page, pageSize int, scopes ...func(*gorm.DB) *gorm.DB) ([]T, int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []T
	if err := paginate(query.Session(&gorm.Session{}).Scopes(scopes...).Order(order), page, pageSize).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
