package reservation

type PriceCalculator interface {
	Calculate(unitPrice Money, slot Slot) (Money, error)
}

// HourlyPriceCalculator charges unitPrice per hour, pro rata by the minute,
// rounding half up to the minor unit.
type HourlyPriceCalculator struct{}

func NewHourlyPriceCalculator() *HourlyPriceCalculator {
	return &HourlyPriceCalculator{}
}

func (pc *HourlyPriceCalculator) Calculate(unitPrice Money, slot Slot) (Money, error) {
	if _, err := slot.DurationHours(); err != nil {
		return Money{}, err
	}
	minutes := int64(slot.End() - slot.Start())
	return NewMoney((unitPrice.Amount()*minutes + 30) / 60)
}
