// Package model defines shared data types used across the TGTG bridge.
//
// All types are normalized forms of the TooGoodToGo app API payloads.
//
// Conventions:
//   - Prices: integer minor units plus a decimal count (250/2 = 2.50)
//   - Timestamps: RFC 3339 strings passed through from the upstream API
//   - Absence: nil pointers and empty strings; never sentinel values
package model
