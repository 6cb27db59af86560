package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"hotel-agent/internal/domain"
)

const (
	skPrefixMsg   = "MSG#"
	skMeta        = "META#"
	pkPrefixConv  = "CONV#"
	keyPrefixBook = "BOOKING#"
	ttlDuration   = 30 * 24 * time.Hour // 30-day TTL
)

var (
	// ErrConflict reports a conditional write that lost against a concurrent
	// writer or an already applied change.
	ErrConflict = errors.New("repository: conditional write conflict")
	// ErrThrottled reports that DynamoDB rejected the request for capacity.
	ErrThrottled = errors.New("repository: request throttled")
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Client wraps a DynamoDB table holding conversation history and bookings.
type Client struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName, now: time.Now}, nil
}

func convPK(conversationID string) string {
	return pkPrefixConv + conversationID
}

func msgSK(messageID string) string {
	return skPrefixMsg + messageID
}

func bookingPK(bookingID string) string {
	return keyPrefixBook + bookingID
}

func (c *Client) ttlValue() int64 {
	return c.now().Add(ttlDuration).Unix()
}

// GetHistory queries the newest limit messages of a conversation and returns
// them in chronological order.
func (c *Client) GetHistory(ctx context.Context, conversationID string, limit int) ([]domain.Message, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: convPK(conversationID)},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixMsg},
		},
		// Read newest first so LIMIT keeps the most recent messages.
		ScanIndexForward: aws.Bool(false),
		ConsistentRead:   aws.Bool(true),
	}
	if limit > 0 {
		in.Limit = aws.Int32(int32(limit))
	}

	out, err := c.api.Query(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("repository: GetHistory query: %w", classify(err))
	}

	msgs := make([]domain.Message, 0, len(out.Items))
	for _, item := range out.Items {
		msg, err := itemToMessage(item)
		if err != nil {
			return nil, fmt.Errorf("repository: GetHistory unmarshal: %w", err)
		}
		msgs = append(msgs, msg)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// GetConversationMeta returns the metadata record, or found=false for a
// conversation that has never been written.
func (c *Client) GetConversationMeta(ctx context.Context, conversationID string) (domain.ConversationMeta, bool, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: convPK(conversationID)},
			"SK": &types.AttributeValueMemberS{Value: skMeta},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.ConversationMeta{}, false, fmt.Errorf("repository: GetConversationMeta get item: %w", classify(err))
	}
	if out == nil || len(out.Item) == 0 {
		return domain.ConversationMeta{}, false, nil
	}

	turns, err := intAttr(out.Item, "turns")
	if err != nil {
		return domain.ConversationMeta{}, false, fmt.Errorf("repository: GetConversationMeta decode turns: %w", err)
	}
	messages, err := intAttr(out.Item, "messages")
	if err != nil {
		return domain.ConversationMeta{}, false, fmt.Errorf("repository: GetConversationMeta decode messages: %w", err)
	}
	lastActivity, _ := strAttr(out.Item, "lastActivity") // allow empty
	return domain.ConversationMeta{
		ConversationID: conversationID,
		LastActivity:   lastActivity,
		Turns:          turns,
		Messages:       messages,
	}, true, nil
}

// SaveTurn writes the turn's messages, the optional booking patch and the
// metadata in one transaction.
func (c *Client) SaveTurn(ctx context.Context, turn domain.Turn) error {
	if strings.TrimSpace(turn.ConversationID) == "" {
		return errors.New("repository: SaveTurn: conversation id is required")
	}
	if len(turn.Messages) == 0 {
		return errors.New("repository: SaveTurn: at least one message is required")
	}

	ttl := c.ttlValue()
	items := make([]types.TransactWriteItem, 0, len(turn.Messages)+2)
	for _, msg := range turn.Messages {
		if msg.ID == "" {
			return errors.New("repository: SaveTurn: message id is required")
		}
		item, err := messageItem(turn.ConversationID, msg, ttl)
		if err != nil {
			return fmt.Errorf("repository: SaveTurn: %w", err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(c.tableName),
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
			},
		})
	}

	if turn.Patch != nil {
		update, err := c.patchUpdate(turn.ConversationID, *turn.Patch)
		if err != nil {
			return fmt.Errorf("repository: SaveTurn: %w", err)
		}
		items = append(items, types.TransactWriteItem{Update: update})
	}

	meta := turn.Meta
	meta.ConversationID = turn.ConversationID
	meta.TTL = ttl
	if meta.LastActivity == "" {
		meta.LastActivity = c.now().UTC().Format(time.RFC3339)
	}
	metaPut := &types.Put{
		TableName: aws.String(c.tableName),
		Item:      metaItem(meta),
	}
	if turn.PrevTurns == 0 {
		metaPut.ConditionExpression = aws.String("attribute_not_exists(PK)")
	} else {
		metaPut.ConditionExpression = aws.String("turns = :prev")
		metaPut.ExpressionAttributeValues = map[string]types.AttributeValue{
			":prev": &types.AttributeValueMemberN{Value: strconv.Itoa(turn.PrevTurns)},
		}
	}
	items = append(items, types.TransactWriteItem{Put: metaPut})

	_, err := c.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		return fmt.Errorf("repository: SaveTurn: %w", classify(err))
	}
	return nil
}

// patchUpdate replaces the booking of an earlier message. The condition
// keeps the change one-way: the target must still hold the same booking in a
// different status.
func (c *Client) patchUpdate(conversationID string, p domain.MessagePatch) (*types.Update, error) {
	if p.TargetID == "" || p.BookingDetails.BookingID == "" {
		return nil, errors.New("patch target and booking id are required")
	}
	booking, err := json.Marshal(p.BookingDetails)
	if err != nil {
		return nil, fmt.Errorf("marshal booking patch: %w", err)
	}
	return &types.Update{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: convPK(conversationID)},
			"SK": &types.AttributeValueMemberS{Value: msgSK(p.TargetID)},
		},
		UpdateExpression:    aws.String("SET booking = :booking, bookingStatus = :status"),
		ConditionExpression: aws.String("attribute_exists(SK) AND bookingId = :id AND bookingStatus <> :status"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":booking": &types.AttributeValueMemberS{Value: string(booking)},
			":status":  &types.AttributeValueMemberS{Value: string(p.BookingDetails.Status)},
			":id":      &types.AttributeValueMemberS{Value: p.BookingDetails.BookingID},
		},
	}, nil
}

// SaveBooking appends the booking record. Records are never overwritten.
func (c *Client) SaveBooking(ctx context.Context, b domain.Booking) error {
	if strings.TrimSpace(b.BookingID) == "" {
		return errors.New("repository: SaveBooking: booking id is required")
	}
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                bookingItem(b),
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: SaveBooking: %w", classify(err))
	}
	return nil
}

func classify(err error) error {
	var cancelled *types.TransactionCanceledException
	var condFailed *types.ConditionalCheckFailedException
	var throughput *types.ProvisionedThroughputExceededException
	var limit *types.RequestLimitExceeded
	switch {
	case errors.As(err, &cancelled), errors.As(err, &condFailed):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.As(err, &throughput), errors.As(err, &limit):
		return fmt.Errorf("%w: %w", ErrThrottled, err)
	}
	return err
}

// itemToMessage rebuilds a Message from its payload. The booking lives in
// its own attribute so it can be patched in place.
func itemToMessage(item map[string]types.AttributeValue) (domain.Message, error) {
	payload, err := strAttr(item, "payload")
	if err != nil {
		return domain.Message{}, err
	}
	var msg domain.Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return domain.Message{}, fmt.Errorf("repository: decode payload: %w", err)
	}
	if raw, ok := item["booking"]; ok {
		s, ok := raw.(*types.AttributeValueMemberS)
		if !ok {
			return domain.Message{}, errors.New(`repository: attribute "booking" is not a string`)
		}
		var d domain.BookingDetails
		if err := json.Unmarshal([]byte(s.Value), &d); err != nil {
			return domain.Message{}, fmt.Errorf("repository: decode booking: %w", err)
		}
		msg.BookingDetails = &d
	}
	if msg.ID == "" {
		sk, err := strAttr(item, "SK")
		if err != nil {
			return domain.Message{}, err
		}
		msg.ID = strings.TrimPrefix(sk, skPrefixMsg)
	}
	return msg, nil
}

func messageItem(conversationID string, msg domain.Message, ttl int64) (map[string]types.AttributeValue, error) {
	booking := msg.BookingDetails
	msg.BookingDetails = nil
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal message %s: %w", msg.ID, err)
	}
	item := map[string]types.AttributeValue{
		"PK":             &types.AttributeValueMemberS{Value: convPK(conversationID)},
		"SK":             &types.AttributeValueMemberS{Value: msgSK(msg.ID)},
		"conversationId": &types.AttributeValueMemberS{Value: conversationID},
		"role":           &types.AttributeValueMemberS{Value: string(msg.Role)},
		"content":        &types.AttributeValueMemberS{Value: msg.Content},
		"payload":        &types.AttributeValueMemberS{Value: string(payload)},
		"ttl":            &types.AttributeValueMemberN{Value: strconv.FormatInt(ttl, 10)},
	}
	if booking != nil {
		raw, err := json.Marshal(booking)
		if err != nil {
			return nil, fmt.Errorf("marshal booking of message %s: %w", msg.ID, err)
		}
		item["booking"] = &types.AttributeValueMemberS{Value: string(raw)}
		if booking.BookingID != "" {
			item["bookingId"] = &types.AttributeValueMemberS{Value: booking.BookingID}
			item["bookingStatus"] = &types.AttributeValueMemberS{Value: string(booking.Status)}
		}
	}
	return item, nil
}

func metaItem(meta domain.ConversationMeta) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":             &types.AttributeValueMemberS{Value: convPK(meta.ConversationID)},
		"SK":             &types.AttributeValueMemberS{Value: skMeta},
		"conversationId": &types.AttributeValueMemberS{Value: meta.ConversationID},
		"lastActivity":   &types.AttributeValueMemberS{Value: meta.LastActivity},
		"turns":          &types.AttributeValueMemberN{Value: strconv.Itoa(meta.Turns)},
		"messages":       &types.AttributeValueMemberN{Value: strconv.Itoa(meta.Messages)},
		"ttl":            &types.AttributeValueMemberN{Value: strconv.FormatInt(meta.TTL, 10)},
	}
}

func bookingItem(b domain.Booking) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":             &types.AttributeValueMemberS{Value: bookingPK(b.BookingID)},
		"SK":             &types.AttributeValueMemberS{Value: keyPrefixBook},
		"bookingId":      &types.AttributeValueMemberS{Value: b.BookingID},
		"conversationId": &types.AttributeValueMemberS{Value: b.ConversationID},
		"hotelId":        &types.AttributeValueMemberS{Value: b.HotelID},
		"hotelName":      &types.AttributeValueMemberS{Value: b.HotelName},
		"hotelCity":      &types.AttributeValueMemberS{Value: b.HotelCity},
		"hotelPrice":     &types.AttributeValueMemberN{Value: strconv.FormatFloat(b.HotelPrice, 'f', -1, 64)},
		"checkIn":        &types.AttributeValueMemberS{Value: b.CheckIn},
		"checkOut":       &types.AttributeValueMemberS{Value: b.CheckOut},
		"guests":         &types.AttributeValueMemberN{Value: strconv.Itoa(b.Guests)},
		"customerName":   &types.AttributeValueMemberS{Value: b.CustomerName},
		"customerEmail":  &types.AttributeValueMemberS{Value: b.CustomerEmail},
		"customerPhone":  &types.AttributeValueMemberS{Value: b.CustomerPhone},
		"status":         &types.AttributeValueMemberS{Value: string(b.Status)},
		"createdAt":      &types.AttributeValueMemberS{Value: b.CreatedAt.UTC().Format(time.RFC3339)},
	}
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
