// Package sanitizer normalizes free-text guest input before validation and
// storage.
//
// All functions are idempotent. Invalid input is never an error here: a phone
// number that cannot be parsed is kept as typed (trimmed) and left for the
// validator to judge.
//
// Normalization includes:
//   - Phone numbers: E.164 (+[country][number]) when parseable for a supported region
//   - Emails: trimmed and lowercased
//   - Names and addresses: whitespace collapsed, leading/trailing spaces trimmed
package sanitizer
