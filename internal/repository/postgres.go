package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"propertybw/internal/model"
)

const propertyColumns = `
	id, title, description, price, currency, location, city,
	property_type, listing_type, bedrooms, bathrooms, area_sqm,
	image_url, features, latitude, longitude, geohash, status,
	listed_date, created_at, updated_at`

// PostgresRepository handles property persistence.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository connects to PostgreSQL and configures the pool.
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// ListActive returns active properties matching the filter state, ordered
// by sortBy, plus the total match count before limit/offset.
func (r *PostgresRepository) ListActive(ctx context.Context, f model.FilterState, sortBy string, limit, offset int) ([]model.Property, int, error) {
	whereClauses := []string{"status = 'active'"}
	args := []interface{}{}
	argIndex := 1

	if term := strings.TrimSpace(f.SearchTerm); term != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(title ILIKE $%d OR location ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+term+"%")
		argIndex++
	}
	if f.PropertyType != "" && f.PropertyType != model.FilterAll {
		whereClauses = append(whereClauses, fmt.Sprintf("property_type = $%d", argIndex))
		args = append(args, f.PropertyType)
		argIndex++
	}
	if f.ListingType != "" && f.ListingType != model.FilterAll {
		whereClauses = append(whereClauses, fmt.Sprintf("listing_type = $%d", argIndex))
		args = append(args, f.ListingType)
		argIndex++
	}
	if f.PriceRange[0] > 0 {
		whereClauses = append(whereClauses, fmt.Sprintf("price >= $%d", argIndex))
		args = append(args, f.PriceRange[0])
		argIndex++
	}
	if f.PriceRange[1] > 0 {
		whereClauses = append(whereClauses, fmt.Sprintf("price <= $%d", argIndex))
		args = append(args, f.PriceRange[1])
		argIndex++
	}
	if min, ok := f.MinBedrooms(); ok {
		whereClauses = append(whereClauses, fmt.Sprintf("bedrooms >= $%d", argIndex))
		args = append(args, min)
		argIndex++
	}
	if min, ok := f.MinBathrooms(); ok {
		whereClauses = append(whereClauses, fmt.Sprintf("bathrooms >= $%d", argIndex))
		args = append(args, min)
		argIndex++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM properties WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count properties: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM properties
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, propertyColumns, whereClause, orderBy(sortBy), argIndex, argIndex+1)
	args = append(args, limit, offset)

	var properties []model.Property
	if err := r.db.SelectContext(ctx, &properties, selectQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch properties: %w", err)
	}

	return properties, total, nil
}

// SearchText performs a free-text search ranked by full-text relevance,
// falling back to listing date for ties.
func (r *PostgresRepository) SearchText(ctx context.Context, query, sortBy string, limit int) ([]model.Property, error) {
	order := "text_rank DESC, listed_date DESC NULLS LAST"
	if sortBy != "" && sortBy != "newest" {
		order = orderBy(sortBy)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s,
			ts_rank(search_vector, plainto_tsquery('english', $1)) AS text_rank
		FROM properties
		WHERE status = 'active'
		  AND (search_vector @@ plainto_tsquery('english', $1)
		       OR title ILIKE $2 OR description ILIKE $2
		       OR location ILIKE $2 OR city ILIKE $2)
		ORDER BY %s
		LIMIT $3
	`, propertyColumns, order)

	var properties []model.Property
	err := r.db.SelectContext(ctx, &properties, selectQuery, query, "%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search properties: %w", err)
	}
	return properties, nil
}

// GetByID retrieves a single property. Returns (nil, nil) when missing.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*model.Property, error) {
	var p model.Property
	query := fmt.Sprintf("SELECT %s FROM properties WHERE id = $1", propertyColumns)
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return &p, nil
}

// Upsert inserts or updates a property by id.
func (r *PostgresRepository) Upsert(ctx context.Context, p *model.Property) error {
	query := `
		INSERT INTO properties (
			id, title, description, price, currency, location, city,
			property_type, listing_type, bedrooms, bathrooms, area_sqm,
			image_url, features, latitude, longitude, geohash, status,
			listed_date, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, NOW(), NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			location = EXCLUDED.location,
			city = EXCLUDED.city,
			property_type = EXCLUDED.property_type,
			listing_type = EXCLUDED.listing_type,
			bedrooms = EXCLUDED.bedrooms,
			bathrooms = EXCLUDED.bathrooms,
			area_sqm = EXCLUDED.area_sqm,
			image_url = EXCLUDED.image_url,
			features = EXCLUDED.features,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			geohash = EXCLUDED.geohash,
			status = EXCLUDED.status,
			listed_date = EXCLUDED.listed_date,
			updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Title, p.Description, p.Price, p.Currency, p.Location, p.City,
		p.PropertyType, p.ListingType, p.Bedrooms, p.Bathrooms, p.AreaSqm,
		p.ImageURL, p.Features, p.Latitude, p.Longitude, p.Geohash, p.Status,
		p.ListedDate,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert property %d: %w", p.ID, err)
	}
	return nil
}

// VectorSearch returns active properties nearest to the query embedding by
// cosine distance.
func (r *PostgresRepository) VectorSearch(ctx context.Context, queryEmbedding []float32, limit int) ([]model.Property, error) {
	vec := pgvector.NewVector(queryEmbedding)
	query := fmt.Sprintf(`
		SELECT %s
		FROM properties
		WHERE status = 'active' AND embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2
	`, propertyColumns)

	var properties []model.Property
	if err := r.db.SelectContext(ctx, &properties, query, vec, limit); err != nil {
		return nil, fmt.Errorf("failed to vector search: %w", err)
	}
	return properties, nil
}

// BatchUpdateEmbeddings updates embeddings for multiple properties in one
// transaction. Returns the success count and per-item errors.
func (r *PostgresRepository) BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string) {
	success := 0
	var errors []string

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to start transaction: %v", err))
		return success, errors
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `UPDATE properties SET embedding = $1, updated_at = NOW() WHERE id = $2`)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to prepare statement: %v", err))
		return success, errors
	}
	defer stmt.Close()

	for _, item := range items {
		vec := pgvector.NewVector(item.Embedding)
		if _, err := stmt.ExecContext(ctx, vec, item.PropertyID); err != nil {
			errors = append(errors, fmt.Sprintf("property %d: %v", item.PropertyID, err))
			continue
		}
		success++
	}

	if err := tx.Commit(); err != nil {
		errors = append(errors, fmt.Sprintf("failed to commit transaction: %v", err))
		return 0, errors
	}

	return success, errors
}

// LogSearch records a search for analytics. Best effort, called from a
// goroutine off the request path.
func (r *PostgresRepository) LogSearch(ctx context.Context, query string, filters model.FilterState, resultCount int, tookMs int64) error {
	filtersJSON, err := json.Marshal(filters)
	if err != nil {
		return fmt.Errorf("failed to marshal filters: %w", err)
	}
	insert := `
		INSERT INTO search_logs (query, filters, result_count, response_time_ms)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, insert, query, filtersJSON, resultCount, tookMs); err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	return nil
}

func orderBy(sortBy string) string {
	switch sortBy {
	case "price-low":
		return "price ASC"
	case "price-high":
		return "price DESC"
	case "size":
		return "area_sqm DESC NULLS LAST"
	case "bedrooms":
		return "bedrooms DESC"
	default:
		return "listed_date DESC NULLS LAST, id DESC"
	}
}
