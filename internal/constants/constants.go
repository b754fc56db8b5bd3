package constants

// Order status values. Orders are created in Paid state; the pipeline has
// no pending-payment stage because payment is the commit step.
const (
	OrderStatusPaid      = "Paid"
	OrderStatusShipped   = "Shipped"
	OrderStatusDelivered = "Delivered"
	OrderStatusCancelled = "Cancelled"
)

// Appointment status values.
const (
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCancelled = "cancelled"
)

// Membership status values. Inactive members cannot sign in.
const (
	MembershipStatusActive   = "Active"
	MembershipStatusInactive = "Inactive"
)

// Product catalog categories.
const (
	ProductCategoryMoisturizer = "moisturizer"
	ProductCategorySerum       = "serum"
	ProductCategoryAntiAging   = "anti-aging"
	ProductCategoryAcne        = "acne"
)

// ProductCategories lists the valid catalog categories.
var ProductCategories = []string{
	ProductCategoryMoisturizer,
	ProductCategorySerum,
	ProductCategoryAntiAging,
	ProductCategoryAcne,
}

// ProductSkinTypes lists the valid target skin type tags.
var ProductSkinTypes = []string{
	"Oily", "Dry", "Combination", "Sensitive", "Normal", "All Skin Type",
}

// ProductActiveIngredients lists the valid active ingredient tags.
var ProductActiveIngredients = []string{
	"Hyaluronic Acid", "Salicylic Acid", "Retinol", "Niacinamide", "Vitamin C",
}

// Queue names and task types.
const (
	QueueDefault             = "default"
	QueueCritical            = "critical"
	TaskOrderReceiptEmail    = "order:receipt_email"
	TaskAppointmentEmail     = "appointment:status_email"
	TaskPasswordResetEmail   = "user:password_reset_email"
)

// Cache defaults.
const (
	RedisPrefixDefault = "ssc"
)

// Site currency.
const (
	SiteCurrency = "MYR"
)
