package domain

// Column names of the bank customer workbook. The names match the sheet
// headers exactly, including the embedded spaces.
const (
	ColumnID                = "ID"
	ColumnAge               = "Age"
	ColumnExperience        = "Experience"
	ColumnIncome            = "Income"
	ColumnZIPCode           = "ZIP Code"
	ColumnFamily            = "Family"
	ColumnCCAvg             = "CCAvg"
	ColumnEducation         = "Education"
	ColumnMortgage          = "Mortgage"
	ColumnPersonalLoan      = "Personal Loan"
	ColumnSecuritiesAccount = "Securities Account"
	ColumnCDAccount         = "CD Account"
	ColumnOnline            = "Online"
	ColumnCreditCard        = "CreditCard"
)

// Derived column names appended by the pipeline.
const (
	ColumnEdu              = "Edu"
	ColumnAccountHolderCat = "Account_Holder_Cat"
)

// ColumnRole describes how a column of the bank schema is used.
type ColumnRole string

const (
	// RoleIdentifier columns carry no analytical signal and are dropped.
	RoleIdentifier ColumnRole = "identifier"
	// RoleContinuous columns are measured quantities (age, income, spend).
	RoleContinuous ColumnRole = "continuous"
	// RoleCoded columns hold small integer codes (family size, education).
	RoleCoded ColumnRole = "coded"
	// RoleFlag columns hold 0/1 booleans.
	RoleFlag ColumnRole = "flag"
	// RoleLabel is the prediction target (Personal Loan), also a 0/1 flag.
	RoleLabel ColumnRole = "label"
)

// ColumnSpec declares one column of the fixed workbook schema.
type ColumnSpec struct {
	Name string     `json:"name" validate:"required"`
	Role ColumnRole `json:"role" validate:"required,oneof=identifier continuous coded flag label"`
	// Integer reports whether cells are whole numbers in the source file.
	Integer bool `json:"integer"`
	// NonNegative marks quantities that cannot be negative by construction.
	NonNegative bool `json:"non_negative"`
}

// BankSchema is the documented column contract of the input workbook, in
// sheet order.
var BankSchema = []ColumnSpec{
	{Name: ColumnID, Role: RoleIdentifier, Integer: true},
	{Name: ColumnAge, Role: RoleContinuous, Integer: true, NonNegative: true},
	{Name: ColumnExperience, Role: RoleContinuous, Integer: true, NonNegative: true},
	{Name: ColumnIncome, Role: RoleContinuous, Integer: true, NonNegative: true},
	{Name: ColumnZIPCode, Role: RoleIdentifier, Integer: true},
	{Name: ColumnFamily, Role: RoleCoded, Integer: true, NonNegative: true},
	{Name: ColumnCCAvg, Role: RoleContinuous, NonNegative: true},
	{Name: ColumnEducation, Role: RoleCoded, Integer: true},
	{Name: ColumnMortgage, Role: RoleContinuous, Integer: true, NonNegative: true},
	{Name: ColumnPersonalLoan, Role: RoleLabel, Integer: true},
	{Name: ColumnSecuritiesAccount, Role: RoleFlag, Integer: true},
	{Name: ColumnCDAccount, Role: RoleFlag, Integer: true},
	{Name: ColumnOnline, Role: RoleFlag, Integer: true},
	{Name: ColumnCreditCard, Role: RoleFlag, Integer: true},
}

// LookupColumn returns the schema entry for name.
func LookupColumn(name string) (ColumnSpec, bool) {
	for _, spec := range BankSchema {
		if spec.Name == name {
			return spec, true
		}
	}
	return ColumnSpec{}, false
}

// IdentifierColumns returns the names of all identifier columns.
func IdentifierColumns() []string {
	var names []string
	for _, spec := range BankSchema {
		if spec.Role == RoleIdentifier {
			names = append(names, spec.Name)
		}
	}
	return names
}

// Education labels produced for codes 1, 2 and 3.
const (
	EducationLabelUndergrad    = "Undergrad"
	EducationLabelGraduate     = "Graduate"
	EducationLabelProfessional = "Professional"
)

// Account holder labels for the securities/deposit truth table.
const (
	AccountLabelBoth           = "Holds Security and Deposit Account"
	AccountLabelNeither        = "No Security and Deposit Account"
	AccountLabelSecuritiesOnly = "Holds Security But No Deposit Account"
	AccountLabelDepositOnly    = "No Security Account but holds Deposit Account"
)
