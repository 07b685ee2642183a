// README: BigQuery source for historical yellow-cab trips (REST jobs.query + getQueryResults paging).
package trips

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/bigquery/v2"
	"google.golang.org/api/googleapi"
)

const (
	yellowTrips2022 = "bigquery-public-data.new_york_taxi_trips.tlc_yellow_trips_2022"
	queryTimeoutMs  = 60000
	defaultPageSize = 10000
)

// bucketFilters split the sample into short/cheap and long/expensive trips,
// each capped at the bucket limit.
var bucketFilters = []string{
	"fare_amount BETWEEN 2.5 AND 20 AND trip_distance BETWEEN 0.5 AND 6",
	"fare_amount > 20 AND trip_distance > 6",
}

var rawColumns = []string{
	"pickup_datetime",
	"dropoff_datetime",
	"trip_distance",
	"fare_amount",
	"tip_amount",
	"tolls_amount",
	"surcharges_and_taxes",
	"total_amount",
}

type BigQuerySource struct {
	svc         *bigquery.Service
	project     string
	location    string
	bucketLimit int
	pageSize    int64
}

func NewBigQuerySource(svc *bigquery.Service, project, location string, bucketLimit int) *BigQuerySource {
	return &BigQuerySource{
		svc:         svc,
		project:     project,
		location:    location,
		bucketLimit: bucketLimit,
		pageSize:    defaultPageSize,
	}
}

// Query returns the standard-SQL text run by Fetch.
func (s *BigQuerySource) Query() string {
	parts := make([]string, len(bucketFilters))
	for i, filter := range bucketFilters {
		parts[i] = fmt.Sprintf(`(SELECT
    pickup_datetime,
    dropoff_datetime,
    trip_distance,
    fare_amount,
    tip_amount,
    tolls_amount,
    mta_tax + imp_surcharge AS surcharges_and_taxes,
    total_amount
FROM `+"`%s`"+`
WHERE %s
  AND passenger_count > 0
  AND rate_code LIKE '%%1%%'
  AND payment_type LIKE '%%1%%'
LIMIT %d)`, yellowTrips2022, filter, s.bucketLimit)
	}
	return strings.Join(parts, "\nUNION ALL\n")
}

// Fetch runs the query and pages through every result row. Rows that cannot
// be parsed are skipped and counted in the log.
func (s *BigQuerySource) Fetch(ctx context.Context) ([]RawTrip, error) {
	log.Printf("bigquery: querying %s (limit %d per bucket)", yellowTrips2022, s.bucketLimit)
	resp, err := s.svc.Jobs.Query(s.project, &bigquery.QueryRequest{
		Query:        s.Query(),
		UseLegacySql: googleapi.Bool(false),
		Location:     s.location,
		TimeoutMs:    queryTimeoutMs,
		MaxResults:   s.pageSize,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("bigquery query: %w", err)
	}
	if resp.JobReference == nil {
		return nil, errors.New("bigquery query: response has no job reference")
	}

	schema := resp.Schema
	rows := resp.Rows
	token := resp.PageToken
	complete := resp.JobComplete

	for !complete || token != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		call := s.svc.Jobs.GetQueryResults(s.project, resp.JobReference.JobId).
			Location(s.location).
			MaxResults(s.pageSize).
			TimeoutMs(queryTimeoutMs).
			Context(ctx)
		if token != "" {
			call = call.PageToken(token)
		}
		page, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("bigquery results: %w", err)
		}
		if !page.JobComplete {
			continue
		}
		if schema == nil {
			schema = page.Schema
		}
		rows = append(rows, page.Rows...)
		token = page.PageToken
		complete = true
	}

	trips, skipped, err := decodeRows(schema, rows)
	if err != nil {
		return nil, err
	}
	log.Printf("bigquery: fetched %d rows (%d skipped)", len(trips), skipped)
	return trips, nil
}

func decodeRows(schema *bigquery.TableSchema, rows []*bigquery.TableRow) ([]RawTrip, int, error) {
	if len(rows) == 0 {
		return nil, 0, nil
	}
	if schema == nil {
		return nil, 0, errors.New("bigquery: result has rows but no schema")
	}
	index := make(map[string]int, len(schema.Fields))
	for i, f := range schema.Fields {
		index[f.Name] = i
	}
	for _, col := range rawColumns {
		if _, ok := index[col]; !ok {
			return nil, 0, fmt.Errorf("bigquery: result is missing column %s", col)
		}
	}

	out := make([]RawTrip, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		t, err := decodeRow(index, row)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, t)
	}
	return out, skipped, nil
}

func decodeRow(index map[string]int, row *bigquery.TableRow) (RawTrip, error) {
	cell := func(col string) (string, error) {
		i := index[col]
		if i >= len(row.F) || row.F[i] == nil || row.F[i].V == nil {
			return "", fmt.Errorf("%s is null", col)
		}
		s, ok := row.F[i].V.(string)
		if !ok {
			return "", fmt.Errorf("%s: unexpected cell type %T", col, row.F[i].V)
		}
		return s, nil
	}
	num := func(col string) (float64, error) {
		s, err := cell(col)
		if err != nil {
			return 0, err
		}
		return strconv.ParseFloat(s, 64)
	}
	ts := func(col string) (time.Time, error) {
		s, err := cell(col)
		if err != nil {
			return time.Time{}, err
		}
		return parseTimestamp(s)
	}

	var (
		t   RawTrip
		err error
	)
	if t.PickupAt, err = ts("pickup_datetime"); err != nil {
		return t, err
	}
	if t.DropoffAt, err = ts("dropoff_datetime"); err != nil {
		return t, err
	}
	for col, dst := range map[string]*float64{
		"trip_distance":        &t.TripDistance,
		"fare_amount":          &t.FareAmount,
		"tip_amount":           &t.TipAmount,
		"tolls_amount":         &t.TollsAmount,
		"surcharges_and_taxes": &t.SurchargesAndTaxes,
		"total_amount":         &t.TotalAmount,
	} {
		if *dst, err = num(col); err != nil {
			return t, err
		}
	}
	return t, nil
}

var datetimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
}

// parseTimestamp accepts DATETIME strings and TIMESTAMP values, which the
// REST API encodes as fractional epoch seconds.
func parseTimestamp(s string) (time.Time, error) {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		sec := int64(f)
		nsec := int64((f - float64(sec)) * 1e9)
		return time.Unix(sec, nsec).UTC(), nil
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
