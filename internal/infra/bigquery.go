// README: BigQuery REST client initialisation.
package infra

import (
	"context"
	"fmt"

	"google.golang.org/api/bigquery/v2"
	"google.golang.org/api/option"
)

// NewBigQuery uses credentialsFile as the service-account JSON when set,
// otherwise application-default credentials.
func NewBigQuery(ctx context.Context, credentialsFile string) (*bigquery.Service, error) {
	opts := []option.ClientOption{option.WithScopes(bigquery.BigqueryScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := bigquery.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("bigquery.NewService: %w", err)
	}
	return svc, nil
}
