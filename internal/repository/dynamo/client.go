// Package dynamo stores issues in a single DynamoDB table.
//
// Item layout:
//
//	PK     = "ISSUE#<id>"        primary record
//	SK     = "METADATA"
//	GSI1PK = "STATUS#<status>"   secondary index, one entry per issue
//	GSI1SK = "<createdAt>"       fixed-width RFC 3339, so lexical order is time order
//
// Callers never see these keys; they only use issue.Repository.
package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/ignite/issue-tracker/internal/domain"
	"github.com/ignite/issue-tracker/internal/service/issue"
)

// DefaultStatusIndex is the GSI name used when none is configured.
const DefaultStatusIndex = "GSI1"

// API is the subset of *dynamodb.Client the repository uses.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// Options configures NewClient.
type Options struct {
	TableName   string
	StatusIndex string
	Region      string
	Profile     string // empty uses the default credential chain (IAM role on Lambda/ECS)
	Endpoint    string // e.g. http://localhost:8000 for DynamoDB Local
}

// IssueRepo implements issue.Repository against DynamoDB.
type IssueRepo struct {
	api         API
	tableName   string
	statusIndex string
}

// NewClient loads AWS configuration and creates a DynamoDB-backed repository.
func NewClient(ctx context.Context, opts Options) (*IssueRepo, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}
	if opts.Endpoint != "" {
		// DynamoDB Local accepts any credentials but still requires some.
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return New(client, opts.TableName, opts.StatusIndex), nil
}

// New wraps an existing DynamoDB API client.
func New(api API, tableName, statusIndex string) *IssueRepo {
	if statusIndex == "" {
		statusIndex = DefaultStatusIndex
	}
	return &IssueRepo{api: api, tableName: tableName, statusIndex: statusIndex}
}

// Create writes a new item, refusing to overwrite an existing one.
func (r *IssueRepo) Create(ctx context.Context, iss *domain.Issue) error {
	av, err := attributevalue.MarshalMap(toItem(iss.ID, iss))
	if err != nil {
		return fmt.Errorf("marshaling issue: %w", err)
	}

	_, err = r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if isConditionFailed(err) {
		return issue.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("putting issue to DynamoDB: %w", err)
	}
	return nil
}

// GetByID reads the primary item with a strongly consistent read.
func (r *IssueRepo) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	result, err := r.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            primaryKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("getting issue from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}
	return decode(result.Item)
}

// GetAll queries the status index when status is set. Without a status it
// scans the whole table, which is only reasonable for small tables.
func (r *IssueRepo) GetAll(ctx context.Context, status *domain.Status) ([]domain.Issue, error) {
	if status != nil {
		return r.queryByStatus(ctx, *status)
	}
	return r.scanAll(ctx)
}

func (r *IssueRepo) queryByStatus(ctx context.Context, status domain.Status) ([]domain.Issue, error) {
	p := dynamodb.NewQueryPaginator(r.api, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.statusIndex),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: statusKey(status)},
		},
		ScanIndexForward: aws.Bool(true),
	})

	issues := []domain.Issue{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("querying issues by status: %w", err)
		}
		for _, item := range page.Items {
			iss, err := decode(item)
			if err != nil {
				return nil, err
			}
			issues = append(issues, *iss)
		}
	}
	return issues, nil
}

func (r *IssueRepo) scanAll(ctx context.Context) ([]domain.Issue, error) {
	p := dynamodb.NewScanPaginator(r.api, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("EntityType = :type"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":type": &types.AttributeValueMemberS{Value: entityType},
		},
	})

	issues := []domain.Issue{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scanning issues: %w", err)
		}
		for _, item := range page.Items {
			iss, err := decode(item)
			if err != nil {
				return nil, err
			}
			issues = append(issues, *iss)
		}
	}
	return issues, nil
}

// Update replaces the whole item. The index entry moves with it because
// GSI1PK/GSI1SK are attributes of the same item.
func (r *IssueRepo) Update(ctx context.Context, id string, iss *domain.Issue) error {
	av, err := attributevalue.MarshalMap(toItem(id, iss))
	if err != nil {
		return fmt.Errorf("marshaling issue: %w", err)
	}

	_, err = r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if isConditionFailed(err) {
		return issue.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("replacing issue in DynamoDB: %w", err)
	}
	return nil
}

// Delete removes the item and reports whether it existed.
func (r *IssueRepo) Delete(ctx context.Context, id string) (bool, error) {
	out, err := r.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.tableName),
		Key:          primaryKey(id),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return false, fmt.Errorf("deleting issue from DynamoDB: %w", err)
	}
	return len(out.Attributes) > 0, nil
}

// Ping checks that the table is reachable.
func (r *IssueRepo) Ping(ctx context.Context) error {
	_, err := r.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return fmt.Errorf("describing table %s: %w", r.tableName, err)
	}
	return nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (r *IssueRepo) Close() error { return nil }

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return err != nil && errors.As(err, &ccf)
}
