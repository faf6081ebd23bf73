package services

import (
	"fmt"
	"sync"
	"time"

	"auction-board/internal/domain"
)

// ItemStore owns every auction item. Reads hand out copies; the only writers
// are BidService (through update) and Engine (through tick).
type ItemStore struct {
	items []*domain.AuctionItem
	index map[string]*domain.AuctionItem
	mutex sync.RWMutex
}

func NewItemStore(items ...*domain.AuctionItem) (*ItemStore, error) {
	store := &ItemStore{
		index: make(map[string]*domain.AuctionItem, len(items)),
	}

	for _, item := range items {
		if item.Name == "" {
			return nil, fmt.Errorf("item name must not be empty")
		}
		if _, exists := store.index[item.Name]; exists {
			return nil, fmt.Errorf("duplicate item name %q", item.Name)
		}
		store.items = append(store.items, item)
		store.index[item.Name] = item
	}

	return store, nil
}

func (s *ItemStore) ListItems() []domain.AuctionItem {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	items := make([]domain.AuctionItem, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item.Clone())
	}
	return items
}

func (s *ItemStore) GetItem(name string) (domain.AuctionItem, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	item, exists := s.index[name]
	if !exists {
		return domain.AuctionItem{}, domain.Reject(domain.InvalidItem, decimalZero, "unknown item %q", name)
	}
	return item.Clone(), nil
}

func (s *ItemStore) GetHistory(name string) ([]domain.Bid, error) {
	item, err := s.GetItem(name)
	if err != nil {
		return nil, err
	}
	return item.BidHistory, nil
}

// update runs fn against the live item under the write lock.
func (s *ItemStore) update(name string, fn func(item *domain.AuctionItem) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	item, exists := s.index[name]
	if !exists {
		return domain.Reject(domain.InvalidItem, decimalZero, "unknown item %q", name)
	}
	return fn(item)
}

// tick derives every item's display at now and closes the ones that expired.
func (s *ItemStore) tick(now time.Time, derive func(item *domain.AuctionItem) domain.ItemDisplay) *domain.TickResult {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	result := &domain.TickResult{
		Items: make(map[string]domain.ItemDisplay, len(s.items)),
		Order: make([]string, 0, len(s.items)),
	}

	for _, item := range s.items {
		display := derive(item)
		if item.Active && !display.Active {
			item.Active = false
			result.Closed = append(result.Closed, item.Name)
		}
		result.Items[item.Name] = display
		result.Order = append(result.Order, item.Name)
	}

	return result
}
