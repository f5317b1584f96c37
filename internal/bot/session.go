package bot

import "shop_bots/internal/config"

// Customer conversation states.
type customerState int

const (
	stateChoosingSection customerState = iota
	stateChoosingProduct
	stateChoosingQuantity
	stateChoosingPayment
	stateAccountUsername
	stateAccountPassword
	stateHelpType
	stateHelpBulkAmount
	stateHelpComplaint
)

// customerSession is per-chat scratch data. It is never persisted and is
// discarded whole on completion or cancel.
type customerSession struct {
	state customerState

	// purchase draft
	product    config.Product
	quantity   float64
	unitPrice  float64
	totalPrice float64

	// account request draft
	accountUsername string
}

// Admin conversation states.
type adminState int

const (
	stateChoosingAction adminState = iota
	stateOfferUserID
	stateOfferProduct
	stateOfferDescription
	stateOfferPrice
)

type adminSession struct {
	state adminState

	// special offer draft
	offerUserID   int64
	offerUsername string
	offerProduct  string
	offerDesc     string
}
