package prompt

import "fmt"

// instructionTemplate demands the exact feedback JSON and nothing else.
// The downstream parser is strict, not a general-purpose extractor, so
// the model must not wrap the structure in prose or code fences.
const instructionTemplate = `You are an expert in ATS (Applicant Tracking Systems) and resume analysis.
Analyze and rate the attached resume and suggest how to improve it.
The rating can be low if the resume is bad.
Be thorough and detailed. Don't be afraid to point out any mistakes or areas for improvement.
If there is a lot to improve, don't hesitate to give low scores. This is to help the candidate improve.
Take the job posting into consideration:
Company: %s
Job title: %s
Job description: %s

Provide the feedback using the following format, with every score an integer from 0 to 100:
{
  "overallScore": <number 0-100>,
  "ATS": {
    "score": <number 0-100, rate based on ATS suitability>,
    "tips": [{"type": "good" | "improve", "tip": "<give 3-4 tips>"}]
  },
  "toneAndStyle": {
    "score": <number 0-100>,
    "tips": [{"type": "good" | "improve", "tip": "<short title>", "explanation": "<explain in detail>"}]
  },
  "content": {
    "score": <number 0-100>,
    "tips": [{"type": "good" | "improve", "tip": "<short title>", "explanation": "<explain in detail>"}]
  },
  "structure": {
    "score": <number 0-100>,
    "tips": [{"type": "good" | "improve", "tip": "<short title>", "explanation": "<explain in detail>"}]
  },
  "skills": {
    "score": <number 0-100>,
    "tips": [{"type": "good" | "improve", "tip": "<short title>", "explanation": "<explain in detail>"}]
  }
}
Return the JSON object only, without any other text, commentary or backticks.`

// PrepareInstructions builds the inference instruction payload. It is a
// pure function of the three metadata fields; identical inputs always
// produce an identical payload.
func PrepareInstructions(companyName, jobTitle, jobDescription string) string {
	return fmt.Sprintf(instructionTemplate, companyName, jobTitle, jobDescription)
}
