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
	"github.com/google/uuid"
)

// maxTransactItems is the DynamoDB limit for a single TransactWriteItems call.
const maxTransactItems = 100

// DynamoAPI is the subset of the DynamoDB client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// DynamoStore keeps each collection in its own table, keyed by the string attribute `id`.
type DynamoStore struct {
	client DynamoAPI
	prefix string
}

func NewDynamoStore(client DynamoAPI, tablePrefix string) *DynamoStore {
	return &DynamoStore{client: client, prefix: tablePrefix}
}

func (d *DynamoStore) table(collection string) *string {
	return aws.String(d.prefix + collection)
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}}
}

func (d *DynamoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: d.table(collection), Key: idKey(id)})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	return unmarshalItem(out.Item)
}

// List scans the table with the filters pushed down. Ordering and limit are
// applied after the scan since a Scan Limit counts items before filtering.
func (d *DynamoStore) List(ctx context.Context, collection string, q Query) ([]Document, error) {
	input := &dynamodb.ScanInput{TableName: d.table(collection)}
	if err := applyFilterExpression(input, q.Filters); err != nil {
		return nil, err
	}
	var docs []Document
	paginator := dynamodb.NewScanPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan page failed: %w", err)
		}
		for _, it := range page.Items {
			doc, err := unmarshalItem(it)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}
	return applyQuery(docs, q), nil
}

func (d *DynamoStore) Count(ctx context.Context, collection string, filters ...Filter) (int, error) {
	input := &dynamodb.ScanInput{TableName: d.table(collection), Select: types.SelectCount}
	if err := applyFilterExpression(input, filters); err != nil {
		return 0, err
	}
	paginator := dynamodb.NewScanPaginator(d.client, input)
	total := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("scan count failed: %w", err)
		}
		total += int(page.Count)
	}
	return total, nil
}

func (d *DynamoStore) Create(ctx context.Context, collection string, doc Document) (string, error) {
	id := uuid.NewString()
	item := clone(doc)
	item["id"] = id
	av, err := attributevalue.MarshalMap(map[string]interface{}(item))
	if err != nil {
		return "", fmt.Errorf("marshal item: %w", err)
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           d.table(collection),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return "", fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return id, nil
}

func (d *DynamoStore) Update(ctx context.Context, collection, id string, fields Document) error {
	expr, err := buildUpdateExpression(fields)
	if err != nil {
		return err
	}
	if expr == nil {
		return nil
	}
	_, err = d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 d.table(collection),
		Key:                       idKey(id),
		UpdateExpression:          aws.String(expr.expression),
		ConditionExpression:       aws.String("attribute_exists(id)"),
		ExpressionAttributeNames:  expr.names,
		ExpressionAttributeValues: expr.values,
	})
	if err != nil {
		return conditionalToNotFound(fmt.Errorf("update item failed: %w", err))
	}
	return nil
}

func (d *DynamoStore) Delete(ctx context.Context, collection, id string) error {
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           d.table(collection),
		Key:                 idKey(id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		return conditionalToNotFound(fmt.Errorf("delete item failed: %w", err))
	}
	return nil
}

func (d *DynamoStore) Batch() Batch {
	return &dynamoBatch{store: d}
}

// dynamoBatch commits through TransactWriteItems, so it is limited to 100 operations.
type dynamoBatch struct {
	store *DynamoStore
	items []types.TransactWriteItem
	err   error
}

func (b *dynamoBatch) Update(collection, id string, fields Document) {
	expr, err := buildUpdateExpression(fields)
	if err != nil {
		b.fail(err)
		return
	}
	if expr == nil {
		return
	}
	b.items = append(b.items, types.TransactWriteItem{Update: &types.Update{
		TableName:                 b.store.table(collection),
		Key:                       idKey(id),
		UpdateExpression:          aws.String(expr.expression),
		ConditionExpression:       aws.String("attribute_exists(id)"),
		ExpressionAttributeNames:  expr.names,
		ExpressionAttributeValues: expr.values,
	}})
}

func (b *dynamoBatch) Delete(collection, id string) {
	b.items = append(b.items, types.TransactWriteItem{Delete: &types.Delete{
		TableName:           b.store.table(collection),
		Key:                 idKey(id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	}})
}

func (b *dynamoBatch) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *dynamoBatch) Commit(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	if len(b.items) == 0 {
		return nil
	}
	if len(b.items) > maxTransactItems {
		return fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(b.items), maxTransactItems)
	}
	_, err := b.store.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: b.items})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			for _, r := range canceled.CancellationReasons {
				if aws.ToString(r.Code) == "ConditionalCheckFailed" {
					return fmt.Errorf("transaction canceled: %w", ErrNotFound)
				}
			}
		}
		return fmt.Errorf("transact write failed: %w", err)
	}
	return nil
}

type updateExpression struct {
	expression string
	names      map[string]string
	values     map[string]types.AttributeValue
}

// buildUpdateExpression renders a SET clause. Attribute names go through
// placeholders because fields like "name" and "order" are reserved words.
func buildUpdateExpression(fields Document) (*updateExpression, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	keys := sortedKeys(fields)
	expr := &updateExpression{names: map[string]string{}, values: map[string]types.AttributeValue{}}
	parts := make([]string, 0, len(keys))
	for i, k := range keys {
		if k == "id" {
			continue
		}
		name, value := fmt.Sprintf("#u%d", i), fmt.Sprintf(":u%d", i)
		av, err := attributevalue.Marshal(fields[k])
		if err != nil {
			return nil, fmt.Errorf("marshal update value: %w", err)
		}
		expr.names[name] = k
		expr.values[value] = av
		parts = append(parts, fmt.Sprintf("%s = %s", name, value))
	}
	if len(parts) == 0 {
		return nil, nil
	}
	expr.expression = "SET " + strings.Join(parts, ", ")
	return expr, nil
}

// applyFilterExpression adds an AND of equality conditions to input. Dotted
// fields become nested attribute paths.
func applyFilterExpression(input *dynamodb.ScanInput, filters []Filter) error {
	if len(filters) == 0 {
		return nil
	}
	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	conds := make([]string, 0, len(filters))
	for i, f := range filters {
		segments := strings.Split(f.Field, ".")
		path := make([]string, len(segments))
		for j, seg := range segments {
			ph := fmt.Sprintf("#f%d_%d", i, j)
			names[ph] = seg
			path[j] = ph
		}
		attr := strings.Join(path, ".")
		if f.Value == nil {
			values[":null"] = &types.AttributeValueMemberS{Value: "NULL"}
			conds = append(conds, fmt.Sprintf("(attribute_not_exists(%s) OR attribute_type(%s, :null))", attr, attr))
			continue
		}
		av, err := attributevalue.Marshal(f.Value)
		if err != nil {
			return fmt.Errorf("marshal filter value: %w", err)
		}
		ph := fmt.Sprintf(":f%d", i)
		values[ph] = av
		conds = append(conds, fmt.Sprintf("%s = %s", attr, ph))
	}
	input.FilterExpression = aws.String(strings.Join(conds, " AND "))
	input.ExpressionAttributeNames = names
	input.ExpressionAttributeValues = values
	return nil
}

func unmarshalItem(item map[string]types.AttributeValue) (Document, error) {
	var m map[string]interface{}
	if err := attributevalue.UnmarshalMap(item, &m); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return normalize(Document(m))
}

func conditionalToNotFound(err error) error {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("%v: %w", err, ErrNotFound)
	}
	return err
}
