package payroll

const (
	StatusPending    = "Pending"
	StatusCalculated = "Calculated"
	StatusProcessed  = "Processed"
	StatusPaid       = "Paid"

	ChannelEmail = "email"

	FieldGrossSalary     = "grossSalary"
	FieldOtherDeductions = "otherDeductions"

	// parallelThreshold is the batch size above which breakdowns fan out.
	parallelThreshold = 64
)
