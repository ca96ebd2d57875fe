package anim

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ms = time.Millisecond

func playing(s *Store, opts ...Option) *Player {
	p := NewPlayer(append([]Option{WithClock(newFakeClock())}, opts...)...)
	p.Load(s)
	p.Play()
	return p
}

func TestPlayerInitialState(t *testing.T) {
	p := NewPlayer(WithClock(newFakeClock()))
	assert.Equal(t, State{}, p.State())
	assert.Nil(t, p.Store())

	p.Load(delayStore(100, 200))
	assert.Equal(t, State{Index: 0, Playing: false, CarryOver: 0}, p.State())
}

func TestPlayerTickConservesTime(t *testing.T) {
	p := playing(delayStore(100, 200, 50))
	defer p.Close()

	p.Tick(700 * ms)

	assert.Equal(t, State{Index: 0, Playing: true, CarryOver: 0}, p.State())
	st := p.Stats()
	assert.Equal(t, uint64(2), st.Wraps)
	assert.Equal(t, uint64(6), st.FramesAdvanced)
	assert.Equal(t, 6, st.MaxSkip)
}

func TestPlayerTickFastForward(t *testing.T) {
	single := playing(delayStore(100, 200, 50))
	defer single.Close()
	single.Tick(275 * ms)
	assert.Equal(t, State{Index: 1, Playing: true, CarryOver: 175 * ms}, single.State(),
		"275ms only covers frame 0")

	p := playing(delayStore(100, 200, 50))
	defer p.Close()

	p.Tick(325 * ms)
	assert.Equal(t, State{Index: 2, Playing: true, CarryOver: 25 * ms}, p.State())

	p.Tick(24 * ms)
	assert.Equal(t, 2, p.State().Index)
	assert.Equal(t, 49*ms, p.State().CarryOver)

	p.Tick(1 * ms)
	assert.Equal(t, State{Index: 0, Playing: true, CarryOver: 0}, p.State())
}

func TestPlayerSmallTicksAccumulate(t *testing.T) {
	p := playing(delayStore(100, 100))
	defer p.Close()

	for range 9 {
		p.Tick(10 * ms)
	}
	assert.Equal(t, 0, p.State().Index)
	assert.Equal(t, 90*ms, p.State().CarryOver)

	p.Tick(15 * ms)
	assert.Equal(t, 1, p.State().Index)
	assert.Equal(t, 5*ms, p.State().CarryOver)
}

func TestPlayerTimingMatchesDelaySum(t *testing.T) {
	delays := []int{30, 70, 10, 90}
	p := playing(delayStore(delays...))
	defer p.Close()

	// Uneven ticks must land on the same state as one big tick.
	var total time.Duration
	for i := range 41 {
		d := time.Duration(7+i%5) * ms
		total += d
		p.Tick(d)
	}

	ref := playing(delayStore(delays...))
	defer ref.Close()
	ref.Tick(total)

	assert.Equal(t, ref.State(), p.State())
}

func TestPlayerTickNoOps(t *testing.T) {
	t.Run("stopped", func(t *testing.T) {
		p := NewPlayer(WithClock(newFakeClock()))
		p.Load(delayStore(100))
		p.Tick(time.Second)
		assert.Equal(t, State{}, p.State())
		assert.Zero(t, p.Stats().Ticks)
	})

	t.Run("empty store", func(t *testing.T) {
		p := NewPlayer(WithClock(newFakeClock()))
		p.Play()
		p.Tick(time.Second)
		assert.Equal(t, State{}, p.State())
	})

	t.Run("non-positive elapsed", func(t *testing.T) {
		p := playing(delayStore(100, 100))
		defer p.Close()
		p.Tick(0)
		p.Tick(-time.Second)
		assert.Equal(t, State{Playing: true}, p.State())
	})
}

func TestPlayerPlayIsIdempotent(t *testing.T) {
	clk := newFakeClock()
	p := NewPlayer(WithClock(clk))
	defer p.Close()

	p.Play()
	assert.Equal(t, 0, clk.tickerCount(), "empty store does not start")

	p.Load(delayStore(100))
	p.Play()
	p.Play()
	assert.Equal(t, 1, clk.tickerCount())
	assert.True(t, p.State().Playing)
}

func TestPlayerPauseKeepsPosition(t *testing.T) {
	p := playing(delayStore(100, 200, 50))
	defer p.Close()

	p.Tick(130 * ms)
	p.Pause()
	assert.Equal(t, State{Index: 1, Playing: false, CarryOver: 30 * ms}, p.State())

	p.Pause()
	p.Tick(time.Second)
	assert.Equal(t, State{Index: 1, Playing: false, CarryOver: 30 * ms}, p.State())

	p.Play()
	p.Tick(170 * ms)
	assert.Equal(t, State{Index: 2, Playing: true, CarryOver: 0}, p.State())
}

func TestPlayerReset(t *testing.T) {
	p := playing(delayStore(100, 200, 50))
	defer p.Close()

	p.Tick(150 * ms)
	p.Reset()
	assert.Equal(t, State{}, p.State())

	p.Tick(time.Second)
	assert.Equal(t, State{}, p.State())
}

func TestPlayerLoadResets(t *testing.T) {
	p := playing(delayStore(100, 200, 50))
	defer p.Close()
	p.Tick(150 * ms)

	next := delayStore(10)
	p.Load(next)
	assert.Equal(t, State{}, p.State())
	assert.Same(t, next, p.Store())
}

func TestPlayerSeek(t *testing.T) {
	p := playing(delayStore(100, 200, 50))
	defer p.Close()
	p.Tick(50 * ms)

	require.NoError(t, p.Seek(2))
	assert.Equal(t, State{Index: 2, Playing: true}, p.State())

	assert.ErrorIs(t, p.Seek(3), ErrFrameOutOfRange)
	assert.ErrorIs(t, p.Seek(-1), ErrFrameOutOfRange)
	assert.Equal(t, 2, p.State().Index)
}

func TestPlayerDriver(t *testing.T) {
	clk := newFakeClock()
	p := NewPlayer(WithClock(clk))
	defer p.Close()
	p.Load(delayStore(100, 200, 50))
	p.Play()

	t0 := clk.Now()
	tk := clk.ticker(0)
	require.True(t, tk.send(t0.Add(60*ms)))
	require.True(t, tk.send(t0.Add(150*ms)))

	assert.Eventually(t, func() bool {
		return p.State() == State{Index: 1, Playing: true, CarryOver: 50 * ms}
	}, time.Second, time.Millisecond)
}

func TestPlayerDriverIgnoresBackwardTime(t *testing.T) {
	clk := newFakeClock()
	p := NewPlayer(WithClock(clk))
	defer p.Close()
	p.Load(delayStore(100, 100))
	p.Play()

	t0 := clk.Now()
	tk := clk.ticker(0)
	require.True(t, tk.send(t0.Add(-time.Second)))
	require.True(t, tk.send(t0.Add(-time.Second+40*ms)))

	assert.Eventually(t, func() bool {
		return p.State().CarryOver == 40*ms
	}, time.Second, time.Millisecond)
	assert.Equal(t, 0, p.State().Index)
}

func TestPlayerStaleTickAfterPause(t *testing.T) {
	clk := newFakeClock()
	p := NewPlayer(WithClock(clk))
	defer p.Close()
	p.Load(delayStore(100, 100))
	p.Play()
	tk := clk.ticker(0)

	p.Pause()
	before := p.State()

	// Whether or not the driver still takes the tick, it must not apply it.
	tk.send(clk.Now().Add(time.Second))
	assert.Equal(t, before, p.State())

	p.Play()
	assert.Equal(t, 2, clk.tickerCount())
	assert.Equal(t, before.Index, p.State().Index)
}

func TestPlayerClose(t *testing.T) {
	clk := newFakeClock()
	p := NewPlayer(WithClock(clk))
	p.Load(delayStore(100))
	p.Play()

	p.Close()
	assert.False(t, p.State().Playing)
	assert.False(t, clk.ticker(0).send(clk.Now()), "driver has exited and stopped its ticker")

	p.Close()
}

func TestPlayerCloseWaitsForCallbackAfterPause(t *testing.T) {
	clk := newFakeClock()
	entered := make(chan int, 1)
	release := make(chan struct{})
	p := NewPlayer(WithClock(clk), WithFrameCallback(func(i int) {
		entered <- i
		<-release
	}))
	p.Load(delayStore(100, 100))
	p.Play()

	require.True(t, clk.ticker(0).send(clk.Now().Add(150*ms)))
	require.Equal(t, 1, <-entered)

	// The driver is cancelled but still inside the callback.
	p.Pause()
	assert.False(t, p.State().Playing)

	closed := make(chan struct{})
	go func() {
		p.Close()
		close(closed)
	}()
	assert.Never(t, func() bool {
		select {
		case <-closed:
			return true
		default:
			return false
		}
	}, 50*ms, 5*ms, "Close returned while a callback was running")

	close(release)
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return after the callback finished")
	}
	assert.False(t, clk.ticker(0).send(clk.Now()), "driver has exited and stopped its ticker")
}

func TestPlayerCloseWaitsForEveryDriver(t *testing.T) {
	clk := newFakeClock()
	release := make(chan struct{})
	var calls sync.WaitGroup
	calls.Add(2)
	p := NewPlayer(WithClock(clk), WithFrameCallback(func(int) {
		calls.Done()
		<-release
	}))
	p.Load(delayStore(100, 100))

	// Two generations, each parked in its callback after a Reset.
	for i := range 2 {
		p.Play()
		require.True(t, clk.ticker(i).send(clk.Now().Add(150*ms)))
		require.Eventually(t, func() bool { return p.State().Index == 1 }, time.Second, time.Millisecond)
		p.Reset()
	}
	calls.Wait()

	closed := make(chan struct{})
	go func() {
		p.Close()
		close(closed)
	}()
	select {
	case <-closed:
		t.Fatal("Close returned while callbacks were running")
	case <-time.After(50 * ms):
	}
	close(release)
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}
}

func TestPlayerFrameCallback(t *testing.T) {
	var (
		mu  sync.Mutex
		got []int
	)
	p := playing(delayStore(100, 100, 100), WithFrameCallback(func(i int) {
		mu.Lock()
		got = append(got, i)
		mu.Unlock()
	}))
	defer p.Close()

	p.Tick(50 * ms)
	p.Tick(60 * ms)
	p.Tick(200 * ms)
	p.Tick(300 * ms) // full loop: same frame, no callback

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 0}, got)
}

func TestPlayerCallbackMayPause(t *testing.T) {
	clk := newFakeClock()
	var p *Player
	p = NewPlayer(WithClock(clk), WithFrameCallback(func(int) { p.Pause() }))
	defer p.Close()
	p.Load(delayStore(100, 100))
	p.Play()

	require.True(t, clk.ticker(0).send(clk.Now().Add(150*ms)))
	assert.Eventually(t, func() bool {
		return !p.State().Playing
	}, time.Second, time.Millisecond)
	assert.Equal(t, 1, p.State().Index)
}

func TestPlayerConcurrentUse(t *testing.T) {
	p := playing(delayStore(10, 20, 30))
	defer p.Close()

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				switch (w + i) % 5 {
				case 0:
					p.Tick(7 * ms)
				case 1:
					_ = p.State()
				case 2:
					p.Pause()
				case 3:
					p.Play()
				case 4:
					_ = p.Seek(i % 3)
				}
			}
		}()
	}
	wg.Wait()

	st := p.State()
	assert.GreaterOrEqual(t, st.Index, 0)
	assert.Less(t, st.Index, 3)
}
