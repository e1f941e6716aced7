// Package dutree builds adaptive disk-usage trees.
//
// Instead of a single grand total or an exhaustive per-file listing, a
// scan reports the small set of paths that each hold at least 5% of the
// total space under a root, folding everything else into per-directory
// leftover buckets. Both apparent sizes and allocated storage are
// tracked; either metric can drive the significance threshold.
package dutree
