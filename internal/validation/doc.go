// Package validation provides centralized input validation logic.
// This includes table reference parsing, GCS URI checks, SQL statement
// checks, and sheet column name validation.
//
// All user inputs are validated before a remote call is attempted so that
// configuration mistakes surface as local errors instead of failed jobs.
package validation
