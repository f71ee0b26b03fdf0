// Package roster turns raw CSV text into validated certificate recipients.
//
// The package is pure computation: it takes a fully buffered string and
// returns structured results, with no I/O, no database access, and no
// knowledge of any transport layer. Decoding concerns (byte order marks,
// broken UTF-8, legacy encodings) are handled by callers before the text
// reaches [Parse].
//
// # Pipeline
//
// Parsing runs in four stages:
//
//  1. Row splitting: the document is cut into logical rows on newlines that
//     fall outside quoted regions, so multi-line quoted values survive.
//  2. Field tokenization: each row is cut into fields on commas that fall
//     outside quoted regions, with doubled quotes inside a quoted region
//     producing a literal quote character.
//  3. Header resolution: the first row is matched case-insensitively against
//     the required column names (name, certification_id, email), in any
//     order and with extra columns ignored.
//  4. Validation: each data row either becomes a [Recipient], is skipped
//     with a recorded reason, or aborts the parse with a terminal error.
//
// # Error Contract
//
// Per-row problems (short rows, empty required fields) never fail the file;
// they are reported through [Result.Skipped]. File-level problems are
// returned as errors:
//
//   - [ErrInsufficientRows]: fewer than a header row plus one data row
//   - [MissingColumnsError]: one or more required columns absent
//   - [DuplicateIDError]: the same certification_id appears twice
//   - [ErrNoValidRecipients]: every data row was skipped
//
// A duplicate certification_id is terminal rather than skippable because
// each id names exactly one certificate file; letting a later row win
// would silently overwrite an earlier recipient's certificate.
package roster
