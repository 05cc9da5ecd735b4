package repository

import (
	"context"
	"strings"
	"time"

	"github.com/smallbiznis/obtain/internal/catalog/domain"
	"github.com/smallbiznis/obtain/pkg/db/option"
	"gorm.io/gorm"
)

const toolColumns = `id, slug, name, description, detailed_description, category, pricing, website_url, logo_url,
	extra_links, listing_type, tags, features, rating, is_active, is_verified, verification_date,
	contact_name, contact_email, contact_company, user_timezone, owner_id, date_added, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tool *domain.Tool) error {
	return db.WithContext(ctx).Create(tool).Error
}

func (r *repo) InsertBatch(ctx context.Context, db *gorm.DB, tools []*domain.Tool) error {
	if len(tools) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(tools).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Tool, error) {
	var t domain.Tool
	err := db.WithContext(ctx).Raw(
		`SELECT `+toolColumns+` FROM tools WHERE id = ?`,
		id,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *repo) FindActiveByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Tool, error) {
	var t domain.Tool
	err := db.WithContext(ctx).Raw(
		`SELECT `+toolColumns+` FROM tools WHERE id = ? AND is_active = ?`,
		id,
		true,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Tool, int64, error) {
	base := func() *gorm.DB {
		stmt := db.WithContext(ctx).Model(&domain.Tool{}).Where("is_active = ?", true)
		if filter.Category != "" {
			stmt = stmt.Where("category = ?", filter.Category)
		}
		if filter.Pricing != "" {
			stmt = stmt.Where("pricing = ?", filter.Pricing)
		}
		if filter.ListingType != "" {
			stmt = stmt.Where("listing_type = ?", filter.ListingType)
		}
		if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
			pattern := "%" + option.EscapeLike(search) + "%"
			stmt = stmt.Where(
				"(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!' OR "+tagMatch(db)+")",
				pattern, pattern, pattern,
			)
		}
		return stmt
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Tool
	err := base().
		Order(orderClause(filter.SortBy)).
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) ActiveCategories(ctx context.Context, db *gorm.DB) ([]string, error) {
	var categories []string
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT category FROM tools WHERE is_active = ? ORDER BY category ASC`,
		true,
	).Scan(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repo) Stats(ctx context.Context, db *gorm.DB) (domain.StatsRow, error) {
	var row domain.StatsRow
	err := db.WithContext(ctx).Raw(
		`SELECT
			COUNT(*) AS total_tools,
			COUNT(DISTINCT category) AS total_categories,
			COUNT(CASE WHEN pricing IN (?, ?) THEN 1 END) AS free_tools
		 FROM tools WHERE is_active = ?`,
		string(domain.PricingFree),
		string(domain.PricingOpenSource),
		true,
	).Scan(&row).Error
	return row, err
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Tool{}).Count(&count).Error
	return count, err
}

func (r *repo) SetActive(ctx context.Context, db *gorm.DB, id int64, active bool, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE tools SET is_active = ?, updated_at = ? WHERE id = ?`,
		active,
		now,
		id,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) DetachOwner(ctx context.Context, db *gorm.DB, ownerID int64, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE tools SET owner_id = NULL, updated_at = ? WHERE owner_id = ?`,
		now,
		ownerID,
	)
	return res.RowsAffected, res.Error
}

func orderClause(sortBy string) string {
	switch sortBy {
	case domain.SortByDate:
		return "date_added DESC, id DESC"
	case domain.SortByRating:
		return "rating DESC, name ASC"
	case domain.SortByCategory:
		return "category ASC, name ASC"
	default:
		return "name ASC, id ASC"
	}
}

// tagMatch matches the search pattern against each decoded tag rather than
// the stored JSON text, so quotes, commas and \u0026-style escapes never match.
func tagMatch(db *gorm.DB) string {
	dialect := ""
	if db.Dialector != nil {
		dialect = db.Dialector.Name()
	}
	switch dialect {
	case "postgres":
		return "EXISTS (SELECT 1 FROM jsonb_array_elements_text(tags) AS tag(value) WHERE LOWER(tag.value) LIKE ? ESCAPE '!')"
	case "mysql":
		return "EXISTS (SELECT 1 FROM JSON_TABLE(tags, '$[*]' COLUMNS (value TEXT PATH '$')) AS tag WHERE LOWER(tag.value) LIKE ? ESCAPE '!')"
	default:
		return "EXISTS (SELECT 1 FROM json_each(tags) AS tag WHERE LOWER(tag.value) LIKE ? ESCAPE '!')"
	}
}

