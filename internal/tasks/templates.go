package tasks

import "text/template"

const summaryTemplate = `Your task is to summarize the text delimited with triple backticks:
'''{{.BaseText}}'''

The following criteria must be respected:
{{.Criteria}}
- Do not try to create questions or answers for your summarization.
`

const questionGenerationTemplate = `Your task is to ask a single relevant and insightful question about the preceding context delimited with triple backticks:
'''{{.BaseText}}'''

The following criteria must be respected:
{{.Criteria}}
- Do not answer the question you generate.
- Do not try to summarize the text
`

const questionAnswerTemplate = `Read the preceding context delimited with triple backticks carefully. Your task is to answer the question step by step and explain your thoughts:
'''{{.BaseText}}'''

The following criteria must be respected:
{{.Criteria}}
- Do not include questions or summaries in your answer.
`

var promptTemplates = map[Kind]*template.Template{
	Summary:            template.Must(template.New("summarization").Parse(summaryTemplate)),
	QuestionGeneration: template.Must(template.New("question-generation").Parse(questionGenerationTemplate)),
	QuestionAnswer:     template.Must(template.New("question-answer").Parse(questionAnswerTemplate)),
}
