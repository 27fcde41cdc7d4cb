// Package apotek cleans the raw exports of a pharmacy inventory system and
// prepares them for analysis. It is designed to run locally over a pair of
// human-formatted text files, and to never abort on the inconsistent
// formatting those files are known to contain.
//
// The core functionalities include:
//   - Ledger Parsing: Rebuilding purchase and sale transactions from the
//     purchase ledger export, where product header lines introduce the
//     product that following transaction lines belong to.
//   - Stock Parsing: Reading the stock listing, one product per line, with
//     fields assigned from the right.
//   - Indonesian Numbers: Converting "1.234,50" style numbers into exact
//     decimal values.
//   - Outlier Handling: Flagging extreme quantities with a z-score or IQR
//     detector, then telling data-entry errors apart from legitimate bulk
//     transactions using the product's median unit price and usual unit.
//   - Stock Level Features: Aggregating cleaned transactions per product and
//     labelling each product's stock as High or Low for the decision tree
//     found in the tree package.
//
// This package serves as the foundational logic for the `apotek` command-line
// tool. All functions are pure: they take tables and return new tables.
package apotek
