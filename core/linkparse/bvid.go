// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package linkparse

import (
	"errors"
	"strings"
)

const (
	bvXOR    = 23442827791579
	bvMask   = 2251799813685247
	bvMaxAID = 1 << 51
	bvBase   = 58
	bvLen    = 12

	bvAlphabet = "FcwAPNKTMug3GV5Lj7EJnHpWsx4tb8haYeviqBz6rkCy12mUSDQX9RdoZf"
)

var errInvalidBVID = errors.New("invalid BV id")

// BVToAID converts a BV id such as "BV17x411w7KC" to its numeric av id.
func BVToAID(bvid string) (int64, error) {
	if len(bvid) != bvLen || !strings.EqualFold(bvid[:2], "bv") {
		return 0, errInvalidBVID
	}

	chars := []byte("BV" + bvid[2:])
	chars[3], chars[9] = chars[9], chars[3]
	chars[4], chars[7] = chars[7], chars[4]

	var tmp int64

	for _, c := range chars[3:] {
		idx := strings.IndexByte(bvAlphabet, c)
		if idx < 0 {
			return 0, errInvalidBVID
		}

		tmp = tmp*bvBase + int64(idx)
	}

	return (tmp & bvMask) ^ bvXOR, nil
}

// AIDToBV is the inverse of [BVToAID].
func AIDToBV(aid int64) string {
	chars := []byte("BV1000000000")

	tmp := (bvMaxAID | aid) ^ bvXOR
	for i := bvLen - 1; tmp > 0 && i > 2; i-- {
		chars[i] = bvAlphabet[tmp%bvBase]
		tmp /= bvBase
	}

	chars[3], chars[9] = chars[9], chars[3]
	chars[4], chars[7] = chars[7], chars[4]

	return string(chars)
}
