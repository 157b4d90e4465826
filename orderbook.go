// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dlmm

import (
	"math"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
)

// InitOrderBook allocates the per-band level vectors and resets the
// top-of-book cache (spec.md §6 init_orderbook).
func (p *Pool) InitOrderBook(tick1e6 uint64, maxLevels uint16) error {
	n := len(p.Bands)
	if n == 0 {
		return ErrInvalidNBands
	}
	p.Book = &OrderBook{
		Tick1e6:          tick1e6,
		Bids:             make([]PriceLevel, n),
		Asks:             make([]PriceLevel, n),
		NextOrderID:      1,
		BestBidBand:      -1,
		BestAskBand:      -1,
		MaxLevels:        maxLevels,
		MaxQueuePerLevel: DefaultMaxQueuePerLevel,
	}
	return nil
}

// roundToTick snaps a limit price to the nearest multiple of tick_1e6 at
// or below it.
func roundToTick(price, tick uint64) uint64 {
	if tick == 0 {
		return price
	}
	return (price / tick) * tick
}

// targetBand returns argmin_i |mid(i) - price|.
func (p *Pool) targetBand(price uint64) uint16 {
	dist := func(mid uint64) uint64 {
		if mid > price {
			return mid - price
		}
		return price - mid
	}
	best := 0
	bestDiff := dist(p.Bands[0].MidPrice1e6())
	for i := 1; i < len(p.Bands); i++ {
		d := dist(p.Bands[i].MidPrice1e6())
		if d < bestDiff {
			bestDiff = d
			best = i
		}
	}
	return uint16(best)
}

func (b *OrderBook) appendEvent(ev BookEvent) {
	if len(b.Events) < EventQueueCap {
		b.Events = append(b.Events, ev)
	} else {
		b.Events[b.eventsHead] = ev
		b.eventsHead = (b.eventsHead + 1) % EventQueueCap
	}
}

func (b *OrderBook) levelFor(side Side, band uint16) *PriceLevel {
	if side == SideBid {
		return &b.Bids[band]
	}
	return &b.Asks[band]
}

// refreshTopOfBook recomputes best_bid_band/best_ask_band: the
// highest-index bid level and lowest-index ask level with qty > 0.
func (p *Pool) refreshTopOfBook() {
	b := p.Book
	b.BestBidBand = -1
	for i := len(b.Bids) - 1; i >= 0; i-- {
		if b.Bids[i].TotalQty > 0 {
			b.BestBidBand = int32(i)
			break
		}
	}
	b.BestAskBand = -1
	for i := 0; i < len(b.Asks); i++ {
		if b.Asks[i].TotalQty > 0 {
			b.BestAskBand = int32(i)
			break
		}
	}
}

// BestBid1e6 returns the best bid price, or 0 when the bid side is empty.
func (p *Pool) BestBid1e6() uint64 {
	if p.Book == nil || p.Book.BestBidBand < 0 {
		return 0
	}
	return p.Bands[p.Book.BestBidBand].MidPrice1e6()
}

// BestAsk1e6 returns the best ask price, or U64_MAX when the ask side is
// empty.
func (p *Pool) BestAsk1e6() uint64 {
	if p.Book == nil || p.Book.BestAskBand < 0 {
		return math.MaxUint64
	}
	return p.Bands[p.Book.BestAskBand].MidPrice1e6()
}

// PlaceOrder places a new order, first routing it against resting
// liquidity per RouteMode, then resting any remainder (spec.md §4.5
// "Placement").
func (p *Pool) PlaceOrder(now uint64, side Side, qty uint64, limit *uint64, tif TifParam, postOnly, reduceOnly bool, caller Address) (OrderPlaced, error) {
	if p.Book == nil {
		return OrderPlaced{}, ErrNotFound
	}
	if p.IsPaused || p.PauseOrderbook {
		return OrderPlaced{}, ErrPaused
	}
	if qty == 0 {
		return OrderPlaced{}, ErrZeroAmount
	}
	// "In the same slot as an update, only post-only is permitted" —
	// reuses CooldownNotElapsed, the closest gating error in the flat
	// taxonomy, for this post-update grace window (spec.md §5).
	if now == p.PostOnlyUntilSlot && !postOnly {
		return OrderPlaced{}, ErrCooldownNotElapsed
	}

	rawLimit := p.LastCenterPrice1e6
	if limit != nil {
		rawLimit = *limit
	}
	roundedLimit := roundToTick(rawLimit, p.Book.Tick1e6)

	remaining := qty
	if !postOnly {
		switch p.RouteMode {
		case RouteBookFirst:
			remaining, _ = p.MatchAgainstBook(side, remaining, roundedLimit)
		case RouteDlmmFirst:
			remaining, _ = p.TakeFromBands(side, remaining, roundedLimit)
		}
	}

	_ = reduceOnly // no margin/position-size tracking in the core CLOB

	band := p.targetBand(roundedLimit)
	tifExpiry := now
	switch tif.Kind {
	case TifGTC:
		tifExpiry = math.MaxUint64
	case TifGTT:
		tifExpiry = tif.GttExpiry
	}

	orderID := p.Book.NextOrderID
	bandMid := p.Bands[band].MidPrice1e6()

	if remaining > 0 && (postOnly || tif.Kind != TifIOC) {
		level := p.Book.levelFor(side, band)
		if level.Tail-level.Head >= uint64(p.Book.MaxQueuePerLevel) {
			return OrderPlaced{}, ErrInvalidAmount
		}
		level.Tail++
		level.TotalQty += remaining
		p.Book.NextOrderID++

		p.Book.appendEvent(BookEvent{
			Kind:       BookEventPlace,
			OrderID:    orderID,
			Side:       side,
			Band:       band,
			Qty:        remaining,
			Price1e6:   bandMid,
			ExpirySlot: tifExpiry,
		})
		p.refreshTopOfBook()
	}

	logrus.WithFields(logrus.Fields{"order_id": orderID, "side": side, "band": band, "qty": qty}).Debug("place_order")

	return OrderPlaced{
		EventVersion: EventVersion,
		OrderID:      orderID,
		Side:         side,
		Band:         band,
		Qty:          remaining,
		Price1e6:     bandMid,
		ExpirySlot:   tifExpiry,
	}, nil
}

// MatchAgainstBook sweeps the opposite side of the book up to limit,
// returning the unmatched remainder (spec.md §4.5 "Book match").
func (p *Pool) MatchAgainstBook(side Side, qty, limit uint64) (uint64, []OrderFilledV3) {
	b := p.Book
	var fills []OrderFilledV3
	remaining := qty

	takerFee := p.FeeCurrentBps
	if p.TakerMinBps > takerFee {
		takerFee = p.TakerMinBps
	}
	makerRebate := p.MakerRebateMaxBps
	if takerFee < makerRebate {
		makerRebate = takerFee
	}

	if side == SideBid {
		for i := 0; i < len(b.Asks) && remaining > 0; i++ {
			mid := p.Bands[i].MidPrice1e6()
			if mid > limit {
				break
			}
			lvl := &b.Asks[i]
			if lvl.TotalQty == 0 {
				continue
			}
			taken := minU64(remaining, lvl.TotalQty)
			lvl.TotalQty -= taken
			remaining -= taken
			fills = append(fills, OrderFilledV3{EventVersion: EventVersion, Band: uint16(i), Side: side, Qty: taken, Price1e6: mid, TakerFeeBps: takerFee, MakerRebateBps: makerRebate})
		}
	} else {
		for i := len(b.Bids) - 1; i >= 0 && remaining > 0; i-- {
			mid := p.Bands[i].MidPrice1e6()
			if mid < limit {
				break
			}
			lvl := &b.Bids[i]
			if lvl.TotalQty == 0 {
				continue
			}
			taken := minU64(remaining, lvl.TotalQty)
			lvl.TotalQty -= taken
			remaining -= taken
			fills = append(fills, OrderFilledV3{EventVersion: EventVersion, Band: uint16(i), Side: side, Qty: taken, Price1e6: mid, TakerFeeBps: takerFee, MakerRebateBps: makerRebate})
		}
	}

	for _, f := range fills {
		b.appendEvent(BookEvent{Kind: BookEventFill, Side: f.Side, Band: f.Band, Qty: f.Qty, Price1e6: f.Price1e6})
	}
	p.refreshTopOfBook()
	return remaining, fills
}

// TakeFromBands sweeps active bands by proximity to last_center_price_1e6,
// trading directly against band reserves (spec.md §4.5 "Band-swap").
func (p *Pool) TakeFromBands(side Side, qty, limit uint64) (uint64, []SwapFilledV) {
	order := bandsByProximity(p.Bands, p.LastCenterPrice1e6)
	var fills []SwapFilledV
	remaining := qty

	for _, i := range order {
		if remaining == 0 {
			break
		}
		band := &p.Bands[i]
		if !band.IsActive {
			continue
		}
		mid := band.MidPrice1e6()
		if side == SideAsk && mid < limit {
			continue
		}
		if side == SideBid && mid > limit {
			continue
		}

		var cap64 uint64
		if side == SideBid {
			cap64 = band.ReservesB
		} else {
			cap64 = band.ReservesA
		}
		if cap64 == 0 {
			continue
		}
		trade := minU64(remaining, cap64)
		if side == SideBid {
			band.ReservesB -= trade
			band.ReservesA += trade
		} else {
			band.ReservesA -= trade
			band.ReservesB += trade
		}
		remaining -= trade

		feeGrowthDelta := new(uint256.Int).Mul(uint256.NewInt(trade), uint256.NewInt(uint64(p.FeeCurrentBps)))
		feeGrowthDelta.Mul(feeGrowthDelta, e18)
		feeGrowthDelta.Div(feeGrowthDelta, uint256.NewInt(BpsScale))
		band.FeeGrowthA1e18.Add(band.FeeGrowthA1e18, feeGrowthDelta)
		band.FeeGrowthB1e18.Add(band.FeeGrowthB1e18, feeGrowthDelta)

		fills = append(fills, SwapFilledV{EventVersion: EventVersion, Band: uint16(i), Side: side, Qty: trade, FeeBps: p.FeeCurrentBps})
		p.Book.appendEvent(BookEvent{Kind: BookEventFill, Side: side, Band: uint16(i), Qty: trade, Price1e6: mid})
	}

	return remaining, fills
}

// bandsByProximity returns band indices ordered by |mid - center|.
func bandsByProximity(bands []Band, center uint64) []int {
	idx := make([]int, len(bands))
	for i := range idx {
		idx[i] = i
	}
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0; j-- {
			a := DiffBps(maxU64(center, 1), bands[idx[j-1]].MidPrice1e6())
			b := DiffBps(maxU64(center, 1), bands[idx[j]].MidPrice1e6())
			if b < a {
				idx[j-1], idx[j] = idx[j], idx[j-1]
			} else {
				break
			}
		}
	}
	return idx
}

// CancelOrder locates the order's Place record in the event ring and
// removes its remembered quantity from the level (spec.md §4.5 "Cancel",
// §9 Open Question (d)).
func (p *Pool) CancelOrder(side Side, orderID uint64) (OrderCanceled, error) {
	if p.Book == nil {
		return OrderCanceled{}, ErrNotFound
	}
	if p.IsPaused || p.PauseOrderbook {
		return OrderCanceled{}, ErrPaused
	}

	for _, ev := range p.Book.Events {
		if ev.Kind == BookEventPlace && ev.Side == side && ev.OrderID == orderID {
			lvl := p.Book.levelFor(side, ev.Band)
			if ev.Qty >= lvl.TotalQty {
				lvl.TotalQty = 0
			} else {
				lvl.TotalQty -= ev.Qty
			}
			p.Book.appendEvent(BookEvent{Kind: BookEventOut, OrderID: orderID, Side: side, Band: ev.Band, Reason: OutReasonCancel})
			p.refreshTopOfBook()
			return OrderCanceled{EventVersion: EventVersion, OrderID: orderID, Side: side, Band: ev.Band, Reason: OutReasonCancel}, nil
		}
	}
	return OrderCanceled{}, ErrNotFound
}

// CrankMatch crosses the book one unit at a time while the top of book is
// crossed, bounded by maxIterations (spec.md §4.5 "Crank match").
func (p *Pool) CrankMatch(maxIterations uint64) int {
	if p.Book == nil || p.IsPaused || p.PauseOrderbook {
		return 0
	}
	crossed := 0
	for i := uint64(0); i < maxIterations; i++ {
		p.refreshTopOfBook()
		b := p.Book
		if b.BestBidBand < 0 || b.BestAskBand < 0 || b.BestBidBand < b.BestAskBand {
			break
		}
		price := p.Bands[b.BestAskBand].MidPrice1e6()
		bidLvl := &b.Bids[b.BestBidBand]
		askLvl := &b.Asks[b.BestAskBand]
		if bidLvl.TotalQty == 0 || askLvl.TotalQty == 0 {
			break
		}
		bidLvl.TotalQty--
		askLvl.TotalQty--
		b.appendEvent(BookEvent{Kind: BookEventFill, Side: SideBid, Band: uint16(b.BestBidBand), Qty: 1, Price1e6: price})
		b.appendEvent(BookEvent{Kind: BookEventFill, Side: SideAsk, Band: uint16(b.BestAskBand), Qty: 1, Price1e6: price})
		crossed++
	}
	p.refreshTopOfBook()
	return crossed
}

// PruneExpired advances each level's head cursor over exhausted entries,
// bounded by maxToPrune total advances (spec.md §4.5 "Prune expired").
func (p *Pool) PruneExpired(maxToPrune uint64) uint64 {
	if p.Book == nil {
		return 0
	}
	pruned := uint64(0)
	prune := func(lvl *PriceLevel) {
		for pruned < maxToPrune && lvl.TotalQty == 0 && lvl.Head < lvl.Tail {
			lvl.Head++
			pruned++
		}
	}
	for i := range p.Book.Bids {
		if pruned >= maxToPrune {
			break
		}
		prune(&p.Book.Bids[i])
	}
	for i := range p.Book.Asks {
		if pruned >= maxToPrune {
			break
		}
		prune(&p.Book.Asks[i])
	}
	return pruned
}

// ViewDepth returns up to `levels` price levels from the top of book on
// each side.
func (p *Pool) ViewDepth(levels int) DepthSnapshot {
	snap := DepthSnapshot{EventVersion: EventVersion}
	if p.Book == nil {
		return snap
	}
	count := 0
	for i := len(p.Book.Bids) - 1; i >= 0 && count < levels; i-- {
		if p.Book.Bids[i].TotalQty > 0 {
			snap.Bids = append(snap.Bids, DepthLevel{Band: uint16(i), Price: p.Bands[i].MidPrice1e6(), Qty: p.Book.Bids[i].TotalQty})
			count++
		}
	}
	count = 0
	for i := 0; i < len(p.Book.Asks) && count < levels; i++ {
		if p.Book.Asks[i].TotalQty > 0 {
			snap.Asks = append(snap.Asks, DepthLevel{Band: uint16(i), Price: p.Bands[i].MidPrice1e6(), Qty: p.Book.Asks[i].TotalQty})
			count++
		}
	}
	return snap
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
