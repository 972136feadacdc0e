// Package dynamo stores transactions in an AWS DynamoDB table keyed by id.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"finance/internal/core"
	applog "finance/internal/log"
	"finance/internal/store"
)

var _ store.Store = (*Store)(nil)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	dynamodb.ScanAPIClient
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Config holds the table location.
type Config struct {
	Region    string
	TableName string
	// Endpoint overrides the service URL, e.g. for DynamoDB Local.
	Endpoint string
}

// Store keeps one item per transaction. Items carry a seq attribute holding
// their creation time so List can restore insertion order after a Scan.
type Store struct {
	client API
	table  string
	now    func() time.Time
}

// item is the DynamoDB representation of a transaction.
type item struct {
	ID          string `dynamodbav:"id"`
	Seq         int64  `dynamodbav:"seq"`
	Description string `dynamodbav:"description"`
	Amount      string `dynamodbav:"amount"`
	Category    string `dynamodbav:"category"`
	Date        string `dynamodbav:"date"`
}

// Open loads the default AWS configuration and returns a store for the table.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.TableName == "" {
		return nil, errors.New("dynamodb table name is required")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	slog.InfoContext(ctx, "DynamoDB client created",
		applog.FieldComponent, applog.ComponentStorage,
		"table", cfg.TableName, "region", cfg.Region, "endpoint", cfg.Endpoint)
	return New(client, cfg.TableName), nil
}

// New returns a store over an existing client.
func New(client API, table string) *Store {
	return &Store{client: client, table: table, now: time.Now}
}

// List scans the whole table and orders items by seq.
func (s *Store) List(ctx context.Context) ([]core.Transaction, error) {
	var items []item
	p := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:      aws.String(s.table),
		ConsistentRead: aws.Bool(true),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan transactions: %w", err)
		}
		var batch []item
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal transactions: %w", err)
		}
		items = append(items, batch...)
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Seq < items[j].Seq })

	out := make([]core.Transaction, 0, len(items))
	for _, it := range items {
		t, err := it.transaction()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Insert writes t unless an item with the same id exists.
func (s *Store) Insert(ctx context.Context, t core.Transaction) error {
	av, err := attributevalue.MarshalMap(item{
		ID:          t.ID,
		Seq:         s.now().UnixNano(),
		Description: t.Description,
		Amount:      t.Amount.String(),
		Category:    t.Category,
		Date:        t.Date,
	})
	if err != nil {
		return fmt.Errorf("marshal transaction: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return store.ErrDuplicateID
		}
		return fmt.Errorf("PutItem operation failed: %w", err)
	}
	return nil
}

// Update sets the patched attributes in a single conditional UpdateItem.
func (s *Store) Update(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	if patch.IsEmpty() {
		return s.get(ctx, id)
	}

	var (
		sets   []string
		names  = map[string]string{}
		values = map[string]types.AttributeValue{}
	)
	set := func(attr string, v string) {
		sets = append(sets, fmt.Sprintf("#%s = :%s", attr, attr))
		names["#"+attr] = attr
		values[":"+attr] = &types.AttributeValueMemberS{Value: v}
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Amount != nil {
		set("amount", patch.Amount.String())
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	if patch.Date != nil {
		set("date", *patch.Date)
	}
	names["#id"] = "id"

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       key(id),
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailed(err) {
			return core.Transaction{}, &core.NotFoundError{ID: id}
		}
		return core.Transaction{}, fmt.Errorf("UpdateItem operation failed: %w", err)
	}

	var it item
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return core.Transaction{}, fmt.Errorf("unmarshal transaction: %w", err)
	}
	return it.transaction()
}

// Delete removes the item, failing with NotFoundError when it is absent.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.table),
		Key:                 key(id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return &core.NotFoundError{ID: id}
		}
		return fmt.Errorf("DeleteItem operation failed: %w", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, id string) (core.Transaction, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("GetItem operation failed: %w", err)
	}
	if len(out.Item) == 0 {
		return core.Transaction{}, &core.NotFoundError{ID: id}
	}
	var it item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return core.Transaction{}, fmt.Errorf("unmarshal transaction: %w", err)
	}
	return it.transaction()
}

func (it item) transaction() (core.Transaction, error) {
	amount, err := core.ParseAmount(it.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s has corrupt amount %q: %w", it.ID, it.Amount, err)
	}
	return core.Transaction{
		ID:          it.ID,
		Description: it.Description,
		Amount:      amount,
		Category:    it.Category,
		Date:        it.Date,
	}, nil
}

func key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}}
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
