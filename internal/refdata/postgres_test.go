package refdata_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raildelay/raildelay/internal/refdata"
)

// fakeRows is an in-memory pgx.Rows.
type fakeRows struct {
	rows [][]any
	pos  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.rows[r.pos-1], nil
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: want %d columns, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *int:
			*p = row[i].(int)
		case **int:
			if row[i] == nil {
				*p = nil
				continue
			}
			v := row[i].(int)
			*p = &v
		default:
			return fmt.Errorf("scan: unsupported type %T", d)
		}
	}
	return nil
}

// fakeQuerier routes queries by the table they read from.
type fakeQuerier struct {
	tables map[string][][]any
	fail   string
}

func (q *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	for table, rows := range q.tables {
		if strings.Contains(sql, "FROM "+table) {
			if table == q.fail {
				return nil, errors.New("relation does not exist")
			}
			return &fakeRows{rows: rows}, nil
		}
	}
	return nil, fmt.Errorf("unexpected query: %s", sql)
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{
		tables: map[string][][]any{
			"train_types": {
				{"Nightjet", "NS Int", 420},
				{"Nightjet", "NS Int", 402},
				{"Intercity", "NS", 1410},
				{"Intercity", "NS", 1409},
				{"Intercity", "NS", 1414},
			},
			"stations": {
				{"UT", "Utrecht Centraal"},
				{"AMS", "Amsterdam Centraal"},
			},
			"platforms": {
				{"1"}, {"2"}, {"5"},
			},
		},
	}
}

func TestLoadPostgres(t *testing.T) {
	d, err := refdata.LoadPostgres(context.Background(), newFakeQuerier())
	require.NoError(t, err)

	types := d.TrainTypes()
	require.Len(t, types, 2)
	assert.Equal(t, []int{420, 402}, types[0].Numbers)
	assert.Equal(t, []int{1410, 1409, 1414}, types[1].Numbers)
	assert.Equal(t, "NS", types[1].Company)

	n, err := d.DefaultTrainNumber("Intercity")
	require.NoError(t, err)
	assert.Equal(t, 1410, n)

	_, ok := d.Station("UT")
	assert.True(t, ok)
	assert.Equal(t, []refdata.Platform{"1", "2", "5"}, d.Platforms())
}

func TestLoadPostgres_QueryError(t *testing.T) {
	q := newFakeQuerier()
	q.fail = "stations"

	_, err := refdata.LoadPostgres(context.Background(), q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading stations")
}

func TestLoadPostgres_InvalidData(t *testing.T) {
	q := newFakeQuerier()
	q.tables["platforms"] = nil

	_, err := refdata.LoadPostgres(context.Background(), q)
	assert.ErrorIs(t, err, refdata.ErrInvalidData)
}

func TestLoadPostgres_TrainTypeWithoutNumbers(t *testing.T) {
	q := newFakeQuerier()
	q.tables["train_types"] = append(q.tables["train_types"], []any{"Sprinter", "NS", nil})

	_, err := refdata.LoadPostgres(context.Background(), q)
	require.Error(t, err)
	assert.ErrorIs(t, err, refdata.ErrInvalidData)
	assert.Contains(t, err.Error(), `"Sprinter" has no train numbers`)
}
