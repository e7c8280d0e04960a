package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"trader-bot/internal/domain"
)

// maxScanPages bounds a single directory read. A directory this size is far
// beyond what a per-message full scan can serve anyway.
const maxScanPages = 50

// dynamodbAPI is the minimal DynamoDB interface required by DirectoryTable.
// Defined here for testability.
type dynamodbAPI interface {
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DirectoryTable serves user directory records from a DynamoDB table. Each
// item is one member row using the same attribute names as the HTTP
// directory (telefono, nombre, nivel, activo, ...).
type DirectoryTable struct {
	api       dynamodbAPI
	tableName string
}

// NewDirectoryTable creates a DirectoryTable.
func NewDirectoryTable(api dynamodbAPI, tableName string) (*DirectoryTable, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &DirectoryTable{api: api, tableName: tableName}, nil
}

// Records scans the whole table. DynamoDB scans are unordered, so the order
// is whatever the table returns; callers only rely on it being stable within
// one call.
func (d *DirectoryTable) Records(ctx context.Context) ([]domain.Record, error) {
	var (
		records  []domain.Record
		startKey map[string]types.AttributeValue
	)
	for page := 0; page < maxScanPages; page++ {
		out, err := d.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(d.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("repository: Records scan: %w", err)
		}

		var rows []map[string]any
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &rows); err != nil {
			return nil, fmt.Errorf("repository: Records unmarshal: %w", err)
		}
		for _, row := range rows {
			records = append(records, domain.RecordFromMap(row))
		}

		if len(out.LastEvaluatedKey) == 0 {
			return records, nil
		}
		startKey = out.LastEvaluatedKey
	}
	return nil, fmt.Errorf("repository: Records: table %q exceeds %d scan pages", d.tableName, maxScanPages)
}
