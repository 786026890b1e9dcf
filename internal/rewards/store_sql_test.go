package rewards

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mind-engage/studyhub/internal/db/dbtest"
)

func award(t *testing.T, s *SQLStore, student string, amount int64) Account {
	t.Helper()
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	a, err := s.AwardTx(ctx, tx, student, amount, "note-"+student)
	if err != nil {
		tx.Rollback()
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	return a
}

func TestBalanceCreatesAccount(t *testing.T) {
	s := NewSQLStore(dbtest.Open(t), nil)
	a, err := s.Balance(context.Background(), "Asha")
	if err != nil {
		t.Fatal(err)
	}
	if a.StudentName != "Asha" || a.Tokens != 0 || a.TotalApprovedNotes != 0 {
		t.Fatalf("account = %+v", a)
	}
	award(t, s, "Asha", 50)
	if a, _ := s.Balance(context.Background(), "Asha"); a.Tokens != 50 {
		t.Fatalf("tokens = %d, want 50", a.Tokens)
	}
}

func TestAwardAccumulates(t *testing.T) {
	s := NewSQLStore(dbtest.Open(t), nil)
	award(t, s, "Ravi", 50)
	a := award(t, s, "Ravi", 50)
	if a.Tokens != 100 || a.TotalApprovedNotes != 2 {
		t.Fatalf("account = %+v", a)
	}
}

func TestLeaderboardOrder(t *testing.T) {
	s := NewSQLStore(dbtest.Open(t), nil)
	award(t, s, "a", 50)
	award(t, s, "b", 150)
	award(t, s, "c", 100)
	got, err := s.Leaderboard(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].StudentName != "b" || got[1].StudentName != "c" {
		t.Fatalf("leaderboard = %+v", got)
	}
}

func TestRedeem(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(dbtest.Open(t), nil)
	for i := 0; i < 6; i++ {
		award(t, s, "Meena", 50)
	}

	r, err := s.Redeem(ctx, "Meena", "Paytm", 200)
	if err != nil {
		t.Fatal(err)
	}
	if r.Tokens != 100 || r.RedeemedGift != "Paytm" || r.Cost != 200 {
		t.Fatalf("redemption = %+v", r)
	}

	if _, err := s.Redeem(ctx, "Meena", "Amazon", 250); !errors.Is(err, ErrInsufficient) {
		t.Errorf("overdraw err = %v", err)
	}
	if a, _ := s.Balance(ctx, "Meena"); a.Tokens != 100 {
		t.Errorf("balance after failed redeem = %d", a.Tokens)
	}
	if _, err := s.Redeem(ctx, "nobody", "Paytm", 200); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown student err = %v", err)
	}
	if _, err := s.Redeem(ctx, "Meena", "Paytm", 0); !errors.Is(err, ErrBadRequest) {
		t.Errorf("zero cost err = %v", err)
	}
	if _, err := s.Redeem(ctx, "Meena", "nike", 10); !errors.Is(err, ErrPriceChanged) {
		t.Errorf("wrong price err = %v", err)
	}
	if _, err := s.Redeem(ctx, "Meena", "Custom voucher", 60); err != nil {
		t.Errorf("off-catalogue gift: %v", err)
	}
}

func TestConcurrentRedeemNeverOverdraws(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(dbtest.Open(t), nil)
	award(t, s, "Kiran", 250)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Redeem(ctx, "Kiran", "Paytm", 200); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if ok != 1 {
		t.Fatalf("successful redemptions = %d, want 1", ok)
	}
	if a, _ := s.Balance(ctx, "Kiran"); a.Tokens != 50 {
		t.Fatalf("balance = %d, want 50", a.Tokens)
	}
}

func TestCatalogList(t *testing.T) {
	l := DefaultCatalog().List()
	if len(l) != 6 || l[0].Name != "Paytm" || l[len(l)-1].Name != "Nike" {
		t.Fatalf("list = %+v", l)
	}
	if p, ok := DefaultCatalog().Price("google play"); !ok || p != 300 {
		t.Errorf("Price = %d, %v", p, ok)
	}
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(dbtest.Open(t), nil)
	award(t, s, "Asha", 150)
	award(t, s, "Asha", 150)
	award(t, s, "Ravi", 50)
	if _, err := s.Redeem(ctx, "Asha", "Paytm", 200); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Redeem(ctx, "Asha", "Nike", 350); !errors.Is(err, ErrInsufficient) {
		t.Fatalf("err = %v", err)
	}

	h, err := s.History(ctx, "Asha", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(h) != 3 {
		t.Fatalf("history = %+v", h)
	}
	if h[0].Kind != KindRedeem || h[0].Amount != -200 || h[0].Ref != "Paytm" {
		t.Errorf("latest = %+v", h[0])
	}
	var sum int64
	for _, e := range h {
		sum += e.Amount
	}
	if a, _ := s.Balance(ctx, "Asha"); a.Tokens != sum {
		t.Errorf("balance %d != ledger sum %d", a.Tokens, sum)
	}
}
