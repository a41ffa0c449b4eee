package prompt

import "strings"

// DefaultInstruction is the question asked of the model when none is given.
const DefaultInstruction = "Can you format the hurricane data into a concise structured table with Storm name, Date start, Date end, Areas affected, and Deaths?"

const formatRequest = "Please provide the data in a structured table format. The table should have the following columns: " +
	"Storm Name, Date Start, Date End, Areas Affected, and Deaths. " +
	"Each row should represent a different storm. Ensure that there are no extra comments or text outside the table."

// Exemplar is reproduced verbatim in every prompt. The reply parser accepts
// exactly this header and separator, so changing one means changing both.
const Exemplar = "Table format example:\n" +
	"| Storm Name | Date Start | Date End | Areas Affected | Deaths |\n" +
	"| --- | --- | --- | --- | --- |\n" +
	"| Example Storm | January 1 | January 5 | Location A | 10 |\n" +
	"Please follow this format exactly.\n"

// Payload is a composed prompt. It has no mutators.
type Payload struct {
	text string
}

// Compose builds the prompt from the rendered records and an instruction.
func Compose(data, instruction string) Payload {
	var sb strings.Builder
	sb.WriteString(data)
	sb.WriteString("\n\n")
	sb.WriteString(formatRequest)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(instruction)
	sb.WriteString("\n\n")
	sb.WriteString(Exemplar)
	return Payload{text: sb.String()}
}

func (p Payload) String() string {
	return p.text
}
