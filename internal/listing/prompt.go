package listing

import (
	"strings"

	"github.com/lithammer/dedent"
)

// DefaultPrompt is the instruction sent alongside the image.
var DefaultPrompt = strings.TrimSpace(dedent.Dedent(`
	Generate a title, description, and suggested price for this item so it can be listed for resale.

	Respond in JSON format with exactly these keys:
	- title: A short, descriptive title suitable for a marketplace listing. Include brand and model if visible.
	- description: A description of the item with relevant details and visible condition (2-4 sentences).
	- price: The suggested price as a string, digits only, no currency symbol.

	Example response:
	{"title": "Vintage Brass Desk Lamp", "description": "Adjustable brass desk lamp from the 1970s. Works, light patina on the base.", "price": "45"}

	Respond ONLY with the JSON object, no markdown or other text.
`))
