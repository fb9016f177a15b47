package usecase

import (
	"context"
	"sync"

	"tradepost/internal/domain/entity"
	"tradepost/internal/domain/service"
	"tradepost/internal/infrastructure/notification"
	"tradepost/pkg/errors"
)

type fakeChatRepo struct {
	mu       sync.Mutex
	rooms    map[string]*entity.ChatRoom
	messages map[string][]*entity.Message
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		rooms:    make(map[string]*entity.ChatRoom),
		messages: make(map[string][]*entity.Message),
	}
}

func (r *fakeChatRepo) CreateRoom(ctx context.Context, room *entity.ChatRoom) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := entity.RoomKey(room.ProductID, room.BuyerID)
	if _, exists := r.rooms[key]; exists {
		return errors.Conflict("Chat room already exists for this product and buyer")
	}

	room.ID = key
	stored := *room
	r.rooms[key] = &stored
	return nil
}

func (r *fakeChatRepo) GetRoomByID(ctx context.Context, id string) (*entity.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, errors.NotFound("Chat room", nil)
	}
	copied := *room
	return &copied, nil
}

func (r *fakeChatRepo) GetRoomByProductAndBuyer(ctx context.Context, productID, buyerID string) (*entity.ChatRoom, error) {
	return r.GetRoomByID(ctx, entity.RoomKey(productID, buyerID))
}

func (r *fakeChatRepo) ListRoomsByUserID(ctx context.Context, userID string) ([]*entity.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rooms []*entity.ChatRoom
	for _, room := range r.rooms {
		if room.HasParticipant(userID) {
			copied := *room
			rooms = append(rooms, &copied)
		}
	}
	entity.SortRoomsByActivity(rooms)
	return rooms, nil
}

func (r *fakeChatRepo) DeleteRoom(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[id]; !ok {
		return errors.NotFound("Chat room", nil)
	}
	delete(r.rooms, id)
	delete(r.messages, id)
	return nil
}

func (r *fakeChatRepo) CreateMessage(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *message
	r.messages[message.RoomID] = append(r.messages[message.RoomID], &copied)
	return nil
}

func (r *fakeChatRepo) SetLastMessage(ctx context.Context, room *entity.ChatRoom, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.rooms[room.ID]
	if !ok {
		return errors.NotFound("Chat room", nil)
	}

	stored.LastMessage = message.Content
	at := message.CreatedAt
	stored.LastMessageAt = &at
	if room.Counterpart(message.SenderID) == stored.BuyerID {
		stored.BuyerUnreadCount++
	} else {
		stored.SellerUnreadCount++
	}
	return nil
}

func (r *fakeChatRepo) ResetUnread(ctx context.Context, room *entity.ChatRoom, readerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.rooms[room.ID]
	if !ok {
		return errors.NotFound("Chat room", nil)
	}

	for _, message := range r.messages[room.ID] {
		if message.SenderID != readerID {
			message.IsRead = true
		}
	}

	if readerID == stored.BuyerID {
		stored.BuyerUnreadCount = 0
	} else {
		stored.SellerUnreadCount = 0
	}
	return nil
}

func (r *fakeChatRepo) ListMessagesByRoom(ctx context.Context, roomID string, limit, offset int) ([]*entity.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.messages[roomID]
	total := int64(len(all))

	start := offset
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	var out []*entity.Message
	for _, message := range all[start:end] {
		copied := *message
		out = append(out, &copied)
	}
	return out, total, nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*entity.Product
}

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: make(map[string]*entity.Product)}
	for _, product := range products {
		repo.products[product.ID] = product
	}
	return repo
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, errors.NotFound("Product", nil)
	}
	copied := *product
	return &copied, nil
}

func (r *fakeProductRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return errors.NotFound("Product", nil)
	}
	product.Status = status
	return nil
}

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo(ids ...string) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, id := range ids {
		repo.users[id] = &entity.User{ID: id}
	}
	return repo
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

type fakeTransactionRepo struct {
	mu           sync.Mutex
	transactions map[string]*entity.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{transactions: make(map[string]*entity.Transaction)}
}

func (r *fakeTransactionRepo) Create(ctx context.Context, transaction *entity.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *transaction
	r.transactions[transaction.ID] = &copied
	return nil
}

func (r *fakeTransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	transaction, ok := r.transactions[id]
	if !ok {
		return nil, errors.NotFound("Transaction", nil)
	}
	copied := *transaction
	return &copied, nil
}

func (r *fakeTransactionRepo) Update(ctx context.Context, transaction *entity.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.transactions[transaction.ID]; !ok {
		return errors.NotFound("Transaction", nil)
	}
	copied := *transaction
	r.transactions[transaction.ID] = &copied
	return nil
}

func (r *fakeTransactionRepo) ListByUserID(ctx context.Context, userID string, role string, limit, offset int) ([]*entity.Transaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Transaction
	for _, transaction := range r.transactions {
		switch role {
		case "seller":
			if transaction.SellerID != userID {
				continue
			}
		case "buyer":
			if transaction.BuyerID != userID {
				continue
			}
		default:
			if transaction.BuyerID != userID && transaction.SellerID != userID {
				continue
			}
		}
		copied := *transaction
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*entity.ResetToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*entity.ResetToken)}
}

func (r *fakeTokenRepo) Save(ctx context.Context, token *entity.ResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *token
	r.tokens[token.Token] = &copied
	return nil
}

func (r *fakeTokenRepo) Get(ctx context.Context, token string) (*entity.ResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tokens[token]
	if !ok {
		return nil, errors.NotFound("Reset token", nil)
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeTokenRepo) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []notification.Event
}

func (p *fakePublisher) Publish(ctx context.Context, routingKey string, event notification.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) byType(eventType string) []notification.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []notification.Event
	for _, event := range p.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

type fakeGateway struct {
	readyResp   *service.PaymentReadyResponse
	readyErr    error
	approveResp *service.PaymentApproveResponse
	approveErr  error

	lastReady   *service.PaymentReadyRequest
	lastApprove *service.PaymentApproveRequest
}

func (g *fakeGateway) Ready(ctx context.Context, req service.PaymentReadyRequest) (*service.PaymentReadyResponse, error) {
	g.lastReady = &req
	if g.readyErr != nil {
		return nil, g.readyErr
	}
	return g.readyResp, nil
}

func (g *fakeGateway) Approve(ctx context.Context, req service.PaymentApproveRequest) (*service.PaymentApproveResponse, error) {
	g.lastApprove = &req
	if g.approveErr != nil {
		return nil, g.approveErr
	}
	return g.approveResp, nil
}
