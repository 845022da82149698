package importer

import "strings"

const promptHead = `Extract the following information from the resume text below in JSON format. ` +
	`Ensure all fields are present, using null if information is not found. ` +
	`Dates should be in YYYY-MM-DD format. If a date is ongoing, use null for endDate.

Resume Text:
"""
`

const promptShape = `
"""

JSON Format Expected:
{
  "personalInfo": {
    "fullName": "string",
    "email": "string",
    "phone": "string | null",
    "address": "string | null",
    "linkedin": "string | null",
    "github": "string | null",
    "portfolio": "string | null",
    "summary": "string | null"
  },
  "experiences": [
    {
      "title": "string",
      "company": "string",
      "location": "string | null",
      "startDate": "YYYY-MM-DD",
      "endDate": "YYYY-MM-DD | null",
      "description": "string | null"
    }
  ],
  "educations": [
    {
      "institution": "string",
      "degree": "string",
      "fieldOfStudy": "string | null",
      "startDate": "YYYY-MM-DD",
      "endDate": "YYYY-MM-DD | null",
      "description": "string | null"
    }
  ],
  "skills": [
    {
      "name": "string",
      "level": "string | null"
    }
  ]
}
`

// BuildPrompt 把提取出的文本嵌入固定的指令模板。
func BuildPrompt(text string) string {
	var b strings.Builder
	b.Grow(len(promptHead) + len(text) + len(promptShape))
	b.WriteString(promptHead)
	b.WriteString(text)
	b.WriteString(promptShape)
	return b.String()
}
