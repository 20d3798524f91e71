// Copyright 2025, the BiliRead contributors
// SPDX-License-Identifier: AGPL-3.0-only

package article

// colorPalette maps the editor's color-<name> classes to hex colours.
var colorPalette = map[string]string{
	"default":   "222222",
	"blue-01":   "56c1fe",
	"lblue-01":  "73fdea",
	"green-01":  "89fa4e",
	"yellow-01": "fff359",
	"pink-01":   "ff968d",
	"purple-01": "ff8cc6",
	"blue-02":   "02a2ff",
	"lblue-02":  "18e7cf",
	"green-02":  "60d837",
	"yellow-02": "fbe231",
	"pink-02":   "ff654e",
	"purple-02": "ef5fa8",
	"blue-03":   "0176ba",
	"lblue-03":  "068f86",
	"green-03":  "1db100",
	"yellow-03": "f8ba00",
	"pink-03":   "ee230d",
	"purple-03": "cb297a",
	"blue-04":   "004e80",
	"lblue-04":  "017c76",
	"green-04":  "017001",
	"yellow-04": "ff9201",
	"pink-04":   "b41700",
	"purple-04": "99195e",
	"gray-01":   "d6d5d5",
	"gray-02":   "929292",
	"gray-03":   "5f5f5f",
}
