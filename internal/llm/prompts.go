package llm

const notesSystemPrompt = `You are an expert at creating comprehensive educational notes.
Format the notes in Markdown with proper headings, bullet points, and structure.`

const jsonSystemPrompt = `You are an expert at turning transcripts into structured study material.
Always respond with properly formatted JSON only.`

const notesPrompt = `Generate comprehensive notes from this transcript in 5 chapters.
For each chapter:
- Include a clear heading (Chapter 1, Chapter 2, etc.)
- Summarize key points
- Add a chapter summary

Finally, add overall key learning points and takeaways.
Format in markdown with proper headings, bullet points, and structure.

TRANSCRIPT:
`

const mindmapPrompt = `Create a hierarchical mindmap of key concepts from this transcript.
Structure as JSON with a 'root' representing the main topic and 'children' nodes for subtopics.
Limit to 3 levels of depth and focus on the most important concepts.
The response should be ONLY a valid JSON object with this structure:
{
  "root": "Main Topic",
  "children": [
    {
      "name": "Subtopic 1",
      "children": [
        {"name": "Concept 1.1", "children": []},
        {"name": "Concept 1.2", "children": []}
      ]
    },
    {
      "name": "Subtopic 2",
      "children": []
    }
  ]
}

TRANSCRIPT:
`

const flashcardsPrompt = `Create 5 true/false questions based on this transcript.
Each question should:
- Test understanding of an important concept from the transcript
- Include the answer (true/false)
- Provide a clear explanation for why the answer is correct

The response should be ONLY a valid JSON array with this structure:
[
  {
    "question": "Question 1?",
    "answer": true,
    "explanation": "Explanation for answer..."
  },
  {
    "question": "Question 2?",
    "answer": false,
    "explanation": "Explanation for answer..."
  }
]

TRANSCRIPT:
`

const samplePrompt = "What is the capital of France?"
