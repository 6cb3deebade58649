// Package smartplay drives the LCSD SmartPLAY website in a Chrome tab.
//
// Browser implements booking.Site on top of chromedp. It blocks image and
// font downloads, forces the simplified-Chinese UI, captures the queue
// number from the site's own queue request, and parses the facility page
// with the scraper package.
package smartplay
