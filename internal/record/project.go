package record

import (
	"fmt"
	"strings"
)

// Project renders a record as its canonical plaintext projection: a
// tagged-field text blob with every field present and array fields as
// repeated sub-elements. The same projection is used for query
// expansion and for the content written to the knowledge store, so a
// record retrieved later matches the shape it was indexed with.
func Project(rec Record) string {
	switch r := rec.(type) {
	case *Event:
		return fmt.Sprintf(`<event>
  <title>%s</title>
  <description>%s</description>
  <startTime>%s</startTime>
  <endTime>%s</endTime>
  <location>%s</location>
  <attendees>%s</attendees>
</event>`, r.Title, r.Description, r.StartTime, r.EndTime, r.Location, joinTagged("attendee", r.Attendees))
	case *Document:
		return fmt.Sprintf(`<document>
  <title>%s</title>
  <content>%s</content>
  <author>%s</author>
  <tags>%s</tags>
</document>`, r.Title, r.Content, r.Author, joinTagged("tag", r.Tags))
	case *Email:
		return fmt.Sprintf(`<email>
  <from>%s</from>
  <to>%s</to>
  <subject>%s</subject>
  <body>%s</body>
  <cc>%s</cc>
</email>`, r.From, r.To, r.Subject, r.Body, joinTagged("ccAddress", r.Cc))
	default:
		// The union is closed; a new variant must be handled above.
		panic(fmt.Sprintf("record: unhandled record kind %T", rec))
	}
}

func joinTagged(tag string, values []string) string {
	var b strings.Builder
	for _, v := range values {
		b.WriteString("<" + tag + ">")
		b.WriteString(v)
		b.WriteString("</" + tag + ">")
	}
	return b.String()
}
