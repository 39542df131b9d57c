package match

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mkarhu/chessmatch/internal/engine"
	"github.com/mkarhu/chessmatch/internal/rules"
)

func testEngine(seed int64) *engine.Engine {
	e := engine.NewEngine()
	e.SetRandomSeed(seed)
	return e
}

func humanSession() *Session {
	return newSession("test-session", testEngine(1),
		Participant{Kind: KindHuman, Joined: true},
		Participant{Kind: KindHuman, Joined: true},
		zap.NewNop())
}

func vsAutomatedSession(level int) *Session {
	return newSession("test-session", testEngine(1),
		Participant{Kind: KindHuman, Joined: true},
		Participant{Kind: KindAutomated, Level: level, Joined: true},
		zap.NewNop())
}

func TestApplyMoveCommitsAndFlipsTurn(t *testing.T) {
	s := humanSession()
	ctx := context.Background()

	res, err := s.ApplyMove(ctx, rules.White, "e2e4", false)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if res.Player.UCI != "e2e4" || res.Player.SAN != "e4" {
		t.Fatalf("unexpected player move: %+v", res.Player)
	}
	if res.ClaimRejected || len(res.Replies) != 0 {
		t.Fatalf("unexpected result flags: %+v", res)
	}
	if res.View.TurnOwner != "black" || res.View.MoveCount != 1 {
		t.Fatalf("turn did not flip: %+v", res.View)
	}
	if res.View.Generation != 1 {
		t.Fatalf("expected generation 1, got %d", res.View.Generation)
	}
}

func TestApplyMoveOutOfTurn(t *testing.T) {
	s := humanSession()
	_, err := s.ApplyMove(context.Background(), rules.Black, "e7e5", false)
	if !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	if s.View().MoveCount != 0 {
		t.Fatalf("rejected move must not commit")
	}
}

func TestApplyMoveIllegalReturnsAlternatives(t *testing.T) {
	s := humanSession()
	_, err := s.ApplyMove(context.Background(), rules.White, "e2e5", false)

	var moveErr *MoveError
	if !errors.As(err, &moveErr) {
		t.Fatalf("expected MoveError, got %v", err)
	}
	if moveErr.Attempted != "e2e5" {
		t.Fatalf("expected attempted move echoed, got %q", moveErr.Attempted)
	}
	if len(moveErr.Examples) == 0 || len(moveErr.Examples) > 3 {
		t.Fatalf("expected 1-3 example moves, got %v", moveErr.Examples)
	}
	if s.View().MoveCount != 0 || s.View().Generation != 0 {
		t.Fatalf("illegal move must not change state")
	}
}

func TestFoolsMateEndsSession(t *testing.T) {
	s := humanSession()
	ctx := context.Background()

	moves := []struct {
		color rules.Color
		uci   string
	}{
		{rules.White, "f2f3"},
		{rules.Black, "e7e5"},
		{rules.White, "g2g4"},
	}
	for _, m := range moves {
		if _, err := s.ApplyMove(ctx, m.color, m.uci, false); err != nil {
			t.Fatalf("apply %s: %v", m.uci, err)
		}
	}

	res, err := s.ApplyMove(ctx, rules.Black, "d8h4", true)
	if err != nil {
		t.Fatalf("mating move: %v", err)
	}
	if res.ClaimRejected {
		t.Fatalf("correct claim must not be rejected")
	}
	if res.View.Status != StatusCheckmate || res.View.Result != "black" {
		t.Fatalf("expected black checkmate, got %+v", res.View)
	}

	// Terminal status is monotonic: no further moves.
	if _, err := s.ApplyMove(ctx, rules.White, "e2e4", false); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("expected ErrGameFinished, got %v", err)
	}
}

func TestWrongClaimCommitsMove(t *testing.T) {
	s := humanSession()
	res, err := s.ApplyMove(context.Background(), rules.White, "e2e4", true)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !res.ClaimRejected {
		t.Fatalf("expected claim rejection on a quiet move")
	}
	if res.View.MoveCount != 1 || res.View.Status != StatusInProgress {
		t.Fatalf("move must commit despite rejected claim: %+v", res.View)
	}
	// The opponent is on turn as usual.
	if res.View.TurnOwner != "black" {
		t.Fatalf("turn should pass to black, got %s", res.View.TurnOwner)
	}
}

func TestAutomatedReplyIsSynchronous(t *testing.T) {
	s := vsAutomatedSession(3)
	res, err := s.ApplyMove(context.Background(), rules.White, "e2e4", false)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(res.Replies) != 1 {
		t.Fatalf("expected one automated reply, got %d", len(res.Replies))
	}
	if res.Replies[0].Color != rules.Black {
		t.Fatalf("reply should be black's move")
	}
	if res.View.TurnOwner != "white" || res.View.MoveCount != 2 {
		t.Fatalf("expected turn back with white after reply: %+v", res.View)
	}
	if res.View.Generation != 2 {
		t.Fatalf("each accepted move advances the generation, got %d", res.View.Generation)
	}

	hist := s.History()
	if len(hist) != 2 || hist[0].Automated || !hist[1].Automated {
		t.Fatalf("history should record one human and one automated ply: %+v", hist)
	}
}

func TestAutomatedVersusAutomatedTerminates(t *testing.T) {
	s := newSession("auto-vs-auto", testEngine(9),
		Participant{Kind: KindAutomated, Level: 1, Joined: true},
		Participant{Kind: KindAutomated, Level: 1, Joined: true},
		zap.NewNop())

	s.startAutomated(context.Background())

	view := s.View()
	if !view.Status.Terminal() {
		t.Fatalf("automated game must reach a terminal state, got %s", view.Status)
	}
	if view.MoveCount > maxAutomatedPlies {
		t.Fatalf("reply chain exceeded the cap: %d plies", view.MoveCount)
	}
}

func TestConcurrentMovesOneWinner(t *testing.T) {
	s := humanSession()
	ctx := context.Background()
	const attempts = 8

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.ApplyMove(ctx, rules.White, "e2e4", false)
		}(i)
	}
	wg.Wait()

	var accepted int
	for _, err := range errs {
		if err == nil {
			accepted++
		} else if !errors.Is(err, ErrNotYourTurn) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if accepted != 1 {
		t.Fatalf("exactly one concurrent move must win, got %d", accepted)
	}
	if view := s.View(); view.MoveCount != 1 || view.Generation != 1 {
		t.Fatalf("state must reflect a single committed move: %+v", view)
	}
}

func TestResign(t *testing.T) {
	s := humanSession()
	view, err := s.Resign(rules.White)
	if err != nil {
		t.Fatalf("resign: %v", err)
	}
	if view.Status != StatusResigned || view.Result != "black" {
		t.Fatalf("expected black win by resignation, got %+v", view)
	}
	if _, err := s.Resign(rules.Black); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("expected ErrGameFinished on double resign, got %v", err)
	}
}

func TestAwaitTurnAdvancesAndTimesOut(t *testing.T) {
	s := humanSession()
	ctx := context.Background()

	// Nothing has happened: short wait times out.
	if _, event := s.AwaitTurn(ctx, 0, 50*time.Millisecond); event != TurnTimedOut {
		t.Fatalf("expected timeout, got %v", event)
	}

	if _, err := s.ApplyMove(ctx, rules.White, "e2e4", false); err != nil {
		t.Fatalf("apply: %v", err)
	}

	// Stale generation returns immediately.
	start := time.Now()
	view, event := s.AwaitTurn(ctx, 0, 5*time.Second)
	if event != TurnAdvanced {
		t.Fatalf("expected TurnAdvanced, got %v", event)
	}
	if view.Generation != 1 {
		t.Fatalf("expected generation 1, got %d", view.Generation)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Fatalf("stale wait blocked for %v", time.Since(start))
	}
}

func TestAwaitTurnReportsGameOver(t *testing.T) {
	s := humanSession()
	if _, err := s.Resign(rules.White); err != nil {
		t.Fatalf("resign: %v", err)
	}
	view, event := s.AwaitTurn(context.Background(), 99, 5*time.Second)
	if event != TurnGameOver {
		t.Fatalf("expected TurnGameOver, got %v", event)
	}
	if view.Status != StatusResigned {
		t.Fatalf("expected resigned status, got %s", view.Status)
	}
}

func TestWaiterWokenByMove(t *testing.T) {
	s := humanSession()
	ctx := context.Background()

	type waitResult struct {
		view  View
		event TurnEvent
	}
	done := make(chan waitResult, 1)
	go func() {
		view, event := s.AwaitTurn(ctx, 0, 5*time.Second)
		done <- waitResult{view, event}
	}()

	time.Sleep(20 * time.Millisecond)
	if _, err := s.ApplyMove(ctx, rules.White, "e2e4", false); err != nil {
		t.Fatalf("apply: %v", err)
	}

	select {
	case res := <-done:
		if res.event != TurnAdvanced {
			t.Fatalf("expected TurnAdvanced, got %v", res.event)
		}
		if res.view.MoveCount != 1 {
			t.Fatalf("waiter should see the committed move: %+v", res.view)
		}
	case <-time.After(time.Second):
		t.Fatalf("waiter was not woken by the move")
	}
}
