// Package textnorm provides text normalization for exam question statements.
//
// The primary use cases are:
//   - Normalizing noisy Unicode (ligatures, fullwidth forms, OCR-ish math
//     notation) into a safe printable range the question bank accepts
//   - Stripping embedded HTML markup and bibliographic boilerplate while
//     recording whether the statement carried an image
//   - Extracting search terms (first sentence, word bags, last sentence)
//     from cleaned statements
//
// Normalize is idempotent and never fails; callers can apply it defensively
// at every boundary that talks to the bank.
package textnorm
