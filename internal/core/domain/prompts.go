package domain

// DefaultSystemPrompt is the system message sent with every answer request.
const DefaultSystemPrompt = "You are a helpful offline assistant."

// DefaultAnswerPrompt grounds the answer in retrieved sources.
// %[1]s is the user question and %[2]s the rendered source blocks.
const DefaultAnswerPrompt = `You are an offline AI assistant.
Answer ONLY using the provided sources.
If the answer is not present, say:
"I don't have enough information in the provided documents."

User Question:
%[1]s

Sources:
%[2]s

Instructions:
- Give a concise answer first.
- Then list citations as bullet points:
  (document_name, page/section, vector_id).`
