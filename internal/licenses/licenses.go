// Package licenses embeds the project license and third-party notices.
package licenses

import _ "embed"

//go:embed embedded/LICENSE
var licenseText string

//go:embed embedded/THIRD_PARTY_NOTICES.md
var noticesText string

func LicenseText() string {
	return licenseText
}

func NoticesText() string {
	return noticesText
}
