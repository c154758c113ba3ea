// Package dataprocessing cleans and enriches the bank customer table.
// It covers the whole path from the Excel workbook to a feature-enriched
// table ready for statistical exploration.
//
// # Components
//
//  1. Parser: reads the customer workbook with excelize into a table.Table
//  2. Schema reducer: drops identifier columns (ID, ZIP Code)
//  3. Validity repair: replaces negative values with the column mean
//  4. Classifiers: Education codes and account-holder flags to labels
//  5. Dispersion: quartiles, IQR and Tukey fences per numeric column
//  6. Skew transforms: log(x+1) and a fitted Yeo-Johnson power transform
//  7. Reports: skewness, correlation, missing cells, splits by a 0/1 flag
//
// # Usage
//
//	t, err := dataprocessing.ParseFile("Bank_Personal_Loan_Modelling.xlsx")
//	if err != nil {
//	    return err
//	}
//	t, err = dataprocessing.ReduceSchema(t)
//	t, report, err := dataprocessing.RepairNegative(t, "Experience")
//	t, err = dataprocessing.DeriveEducation(t)
//	summary := dataprocessing.ComputeDispersion(t)
//	t, fitted, err := dataprocessing.TransformTable(t,
//	    dataprocessing.DefaultLogColumns, dataprocessing.DefaultPowerColumns,
//	    dataprocessing.DefaultPowerOptions())
//
// # Data Flow
//
//	Workbook → Parser → Reduce → Repair → Derive labels → Dispersion → Transforms
//
// Every step takes a table and returns a new one. Inputs are never modified,
// so a caller may keep any intermediate table as a snapshot.
//
// # Error Handling
//
// Failures are *errors.AppError values from internal/errors:
//
//   - COLUMN_NOT_FOUND when an operation names an absent column
//   - DATA_QUALITY when data breaks a stage precondition (negative repair mean, missing cells)
//   - DOMAIN when values fall outside a transform's domain
//
// Use errors.Is with the matching sentinel, for example errors.ErrDomain.
package dataprocessing
