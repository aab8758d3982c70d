package classifier

import "fmt"

const promptTemplate = `You are an AI Support Ticket Routing System.
Analyze the following support request and output a STRICT JSON object.

USER: %s (%s)
MESSAGE: %q

RULES:
1. Classify 'category' as one of: billing, technical, sales, account, other.
2. Determine 'priority' as: low, medium, high.
   - High if: service down, payment failed, access blocked, angry user.
3. Create a 'summary' (one sentence).
4. Assign 'route_to' as:
   - billing_queue (for billing/payment)
   - technical_queue (for bugs/outages)
   - sales_queue (for pricing/demos)
   - general_support (for rest/unclear)

OUTPUT SCHEMA (JSON ONLY):
{
  "category": "...",
  "priority": "...",
  "summary": "...",
  "route_to": "..."
}
`

// BuildPrompt embeds the submitter's fields into the fixed routing prompt.
func BuildPrompt(name, email, message string) string {
	return fmt.Sprintf(promptTemplate, name, email, message)
}
