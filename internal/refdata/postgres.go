package refdata

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of *pgxpool.Pool used to load reference data.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const (
	trainTypesQuery = `
		SELECT t.name, t.company, n.number
		FROM train_types t
		LEFT JOIN train_numbers n ON n.train_type = t.name
		ORDER BY t.position, t.name, n.position
	`

	stationsQuery = `
		SELECT code, name
		FROM stations
		ORDER BY position
	`

	platformsQuery = `
		SELECT id
		FROM platforms
		ORDER BY position
	`
)

// LoadPostgres reads the reference tables from PostgreSQL and freezes them.
// The position columns keep the configured order, so the first number of
// each train type stays its default.
func LoadPostgres(ctx context.Context, db Querier) (*Data, error) {
	trainTypes, err := queryTrainTypes(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("loading train types: %w", err)
	}

	stations, err := queryStations(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("loading stations: %w", err)
	}

	platforms, err := queryPlatforms(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("loading platforms: %w", err)
	}

	return New(trainTypes, stations, platforms)
}

func queryTrainTypes(ctx context.Context, db Querier) ([]TrainType, error) {
	rows, err := db.Query(ctx, trainTypesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trainTypes []TrainType
	for rows.Next() {
		var (
			name, company string
			number        *int
		)
		if err := rows.Scan(&name, &company, &number); err != nil {
			return nil, err
		}

		// Rows arrive grouped by train type. A type without numbers comes
		// back as a single NULL row and is left empty for New to reject.
		if n := len(trainTypes); n == 0 || trainTypes[n-1].Name != name {
			trainTypes = append(trainTypes, TrainType{Name: name, Company: company})
		}
		if number != nil {
			last := &trainTypes[len(trainTypes)-1]
			last.Numbers = append(last.Numbers, *number)
		}
	}

	return trainTypes, rows.Err()
}

func queryStations(ctx context.Context, db Querier) ([]Station, error) {
	rows, err := db.Query(ctx, stationsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []Station
	for rows.Next() {
		var s Station
		if err := rows.Scan(&s.Code, &s.Name); err != nil {
			return nil, err
		}
		stations = append(stations, s)
	}

	return stations, rows.Err()
}

func queryPlatforms(ctx context.Context, db Querier) ([]Platform, error) {
	rows, err := db.Query(ctx, platformsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var platforms []Platform
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		platforms = append(platforms, Platform(p))
	}

	return platforms, rows.Err()
}
