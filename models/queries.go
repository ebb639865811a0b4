package models

// Производные запросы по коллекции ставок одной работы.

// LowestBid возвращает ставку с минимальной суммой.
// Второе значение false, если ставок нет.
func (j *UserJob) LowestBid() (Bid, bool) {
	if len(j.Bids) == 0 {
		return Bid{}, false
	}
	lowest := j.Bids[0]
	for _, b := range j.Bids[1:] {
		if b.Amount < lowest.Amount {
			lowest = b
		}
	}
	return lowest, true
}

// HighestBid возвращает ставку с максимальной суммой.
func (j *UserJob) HighestBid() (Bid, bool) {
	if len(j.Bids) == 0 {
		return Bid{}, false
	}
	highest := j.Bids[0]
	for _, b := range j.Bids[1:] {
		if b.Amount > highest.Amount {
			highest = b
		}
	}
	return highest, true
}

// AcceptedBid возвращает принятую ставку, если она есть.
func (j *UserJob) AcceptedBid() (Bid, bool) {
	for _, b := range j.Bids {
		if b.Accepted {
			return b, true
		}
	}
	return Bid{}, false
}

// HasAcceptedBid — есть ли по работе принятое предложение.
func (j *UserJob) HasAcceptedBid() bool {
	_, ok := j.AcceptedBid()
	return ok
}

// BidByGarage возвращает ставку указанного гаража на эту работу.
func (j *UserJob) BidByGarage(garageID int) (Bid, bool) {
	for _, b := range j.Bids {
		if b.GarageID == garageID {
			return b, true
		}
	}
	return Bid{}, false
}
