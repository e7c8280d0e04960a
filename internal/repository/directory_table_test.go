package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	pages   []*dynamodb.ScanOutput
	scanErr error
	inputs  []*dynamodb.ScanInput
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	idx := len(f.inputs) - 1
	if idx >= len(f.pages) {
		return &dynamodb.ScanOutput{}, nil
	}
	return f.pages[idx], nil
}

func memberItem(phone, name, level string, active bool) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"telefono": &types.AttributeValueMemberS{Value: phone},
		"nombre":   &types.AttributeValueMemberS{Value: name},
		"nivel":    &types.AttributeValueMemberS{Value: level},
		"activo":   &types.AttributeValueMemberBOOL{Value: active},
	}
}

func mustNewTable(t *testing.T, db *fakeDynamo) *DirectoryTable {
	t.Helper()
	d, err := NewDirectoryTable(db, "directory-table")
	require.NoError(t, err)
	return d
}

func TestRecords_SinglePage(t *testing.T) {
	item := memberItem("5215512345678", "Ana", "Intermedio", true)
	item["ciudad"] = &types.AttributeValueMemberS{Value: "Monterrey"}
	db := &fakeDynamo{pages: []*dynamodb.ScanOutput{{Items: []map[string]types.AttributeValue{item}}}}

	recs, err := mustNewTable(t, db).Records(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "Ana", recs[0].Name)
	require.Equal(t, "5215512345678", recs[0].Phone)
	require.Equal(t, "Intermedio", recs[0].Level)
	require.Equal(t, true, recs[0].Active)
	require.Equal(t, "Monterrey", recs[0].Extra["ciudad"])
	require.Equal(t, "directory-table", *db.inputs[0].TableName)
	require.Nil(t, db.inputs[0].ExclusiveStartKey)
}

func TestRecords_FollowsPagination(t *testing.T) {
	lastKey := map[string]types.AttributeValue{"telefono": &types.AttributeValueMemberS{Value: "1"}}
	db := &fakeDynamo{pages: []*dynamodb.ScanOutput{
		{Items: []map[string]types.AttributeValue{memberItem("5511111111", "Uno", "", true)}, LastEvaluatedKey: lastKey},
		{Items: []map[string]types.AttributeValue{memberItem("5522222222", "Dos", "", false)}},
	}}

	recs, err := mustNewTable(t, db).Records(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "Uno", recs[0].Name)
	require.Equal(t, "Dos", recs[1].Name)
	require.Len(t, db.inputs, 2)
	require.Equal(t, lastKey, db.inputs[1].ExclusiveStartKey)
}

func TestRecords_NumericPhone(t *testing.T) {
	item := map[string]types.AttributeValue{
		"Telefono": &types.AttributeValueMemberN{Value: "5215512345678"},
		"Activo":   &types.AttributeValueMemberN{Value: "0"},
	}
	db := &fakeDynamo{pages: []*dynamodb.ScanOutput{{Items: []map[string]types.AttributeValue{item}}}}

	recs, err := mustNewTable(t, db).Records(context.Background())
	require.NoError(t, err)
	require.Equal(t, "5215512345678", recs[0].Phone)
	require.True(t, recs[0].HasActive)
}

func TestRecords_ScanError(t *testing.T) {
	db := &fakeDynamo{scanErr: errors.New("ResourceNotFoundException")}
	_, err := mustNewTable(t, db).Records(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "Records scan")
}

func TestRecords_RunawayPagination(t *testing.T) {
	lastKey := map[string]types.AttributeValue{"telefono": &types.AttributeValueMemberS{Value: "x"}}
	pages := make([]*dynamodb.ScanOutput, maxScanPages+1)
	for i := range pages {
		pages[i] = &dynamodb.ScanOutput{LastEvaluatedKey: lastKey}
	}
	db := &fakeDynamo{pages: pages}

	_, err := mustNewTable(t, db).Records(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "scan pages")
	require.Len(t, db.inputs, maxScanPages)
}

func TestNewDirectoryTable_NilAPI(t *testing.T) {
	_, err := NewDirectoryTable(nil, "directory-table")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")
}

func TestNewDirectoryTable_EmptyTableName(t *testing.T) {
	_, err := NewDirectoryTable(&fakeDynamo{}, " ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be empty")
}
