package dynamo

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/ignite/issue-tracker/internal/domain"
)

const (
	entityType   = "Issue"
	issuePrefix  = "ISSUE#"
	statusPrefix = "STATUS#"
	metadataSK   = "METADATA"
)

// issueItem is the stored shape of an issue. Timestamps are strings in
// domain.TimestampLayout so the index sorts them correctly.
type issueItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	GSI1PK      string `dynamodbav:"GSI1PK"`
	GSI1SK      string `dynamodbav:"GSI1SK"`
	EntityType  string `dynamodbav:"EntityType"`
	ID          string `dynamodbav:"id"`
	Title       string `dynamodbav:"title"`
	Description string `dynamodbav:"description"`
	Status      string `dynamodbav:"status"`
	Priority    string `dynamodbav:"priority"`
	CreatedAt   string `dynamodbav:"createdAt"`
	UpdatedAt   string `dynamodbav:"updatedAt"`
}

func primaryKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: issuePrefix + id},
		"SK": &types.AttributeValueMemberS{Value: metadataSK},
	}
}

func statusKey(s domain.Status) string { return statusPrefix + string(s) }

func toItem(id string, iss *domain.Issue) issueItem {
	created := domain.FormatTimestamp(iss.CreatedAt)
	return issueItem{
		PK:          issuePrefix + id,
		SK:          metadataSK,
		GSI1PK:      statusKey(iss.Status),
		GSI1SK:      created,
		EntityType:  entityType,
		ID:          id,
		Title:       iss.Title,
		Description: iss.Description,
		Status:      string(iss.Status),
		Priority:    string(iss.Priority),
		CreatedAt:   created,
		UpdatedAt:   domain.FormatTimestamp(iss.UpdatedAt),
	}
}

func decode(av map[string]types.AttributeValue) (*domain.Issue, error) {
	var item issueItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("unmarshaling issue: %w", err)
	}
	return fromItem(item)
}

func fromItem(item issueItem) (*domain.Issue, error) {
	status, err := domain.ParseStatus(item.Status)
	if err != nil {
		return nil, fmt.Errorf("issue %s: %w", item.ID, err)
	}
	priority, err := domain.ParsePriority(item.Priority)
	if err != nil {
		return nil, fmt.Errorf("issue %s: %w", item.ID, err)
	}
	created, err := domain.ParseTimestamp(item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("issue %s: %w", item.ID, err)
	}
	updated, err := domain.ParseTimestamp(item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("issue %s: %w", item.ID, err)
	}

	return &domain.Issue{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		Status:      status,
		Priority:    priority,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}, nil
}
