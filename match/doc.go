// Package match ranks ICD-10 catalog entries against free-text drug
// indications.
//
// Text is normalized and lemmatized, widened with synonyms from the
// synonym package, then scored against every catalog entry by cosine
// similarity of TF-IDF vectors from the vectorize package.
package match
